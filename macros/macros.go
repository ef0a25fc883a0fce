package macros

import (
	"bytes"
	"text/template"
)

// ResolveMacros resolves the macros of a parsed template with the given params.
func ResolveMacros(aTemplate *template.Template, params interface{}) (string, error) {
	strBuf := bytes.Buffer{}

	if err := aTemplate.Execute(&strBuf, params); err != nil {
		return "", err
	}
	return strBuf.String(), nil
}
