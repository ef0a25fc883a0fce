package jsonutil

import (
	"bytes"
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonConfigValidationOn = jsoniter.ConfigCompatibleWithStandardLibrary

var jsonConfigValidationOff = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: false,
}.Froze()

// Unmarshal unmarshals a byte slice into the specified data structure without performing
// any validation on the data. An unmarshal error is returned if a non-validation error occurs.
func Unmarshal(data []byte, v interface{}) error {
	err := jsonConfigValidationOff.Unmarshal(data, v)
	if err != nil {
		return &UnmarshalError{
			msg: tryExtractErrorMessage(err),
		}
	}
	return nil
}

// UnmarshalValid validates and unmarshals a byte slice into the specified data structure
// returning an error if validation fails.
func UnmarshalValid(data []byte, v interface{}) error {
	if err := jsonConfigValidationOn.Unmarshal(data, v); err != nil {
		return &UnmarshalError{
			msg: tryExtractErrorMessage(err),
		}
	}
	return nil
}

// Marshal marshals a data structure into a byte slice without performing any validation
// on the data. A marshal error is returned if a non-validation error occurs.
func Marshal(v interface{}) ([]byte, error) {
	data, err := jsonConfigValidationOn.Marshal(v)
	if err != nil {
		return nil, &MarshalError{
			msg: err.Error(),
		}
	}
	return data, nil
}

// ParseIntoString reads a JSON string or bare scalar into a *string. JSON null leaves the
// pointer nil.
func ParseIntoString(b []byte, ppString **string) error {
	if ppString == nil {
		return errors.New("ppString is nil")
	}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var str string
	if b[0] == '"' {
		if err := jsonConfigValidationOn.Unmarshal(b, &str); err != nil {
			return err
		}
	} else {
		str = string(b)
	}
	*ppString = &str
	return nil
}

// tryExtractErrorMessage attempts to extract a sane error message from the json-iter package. The errors
// returned from that library are not types and include a lot of extra information we don't want to respond with.
// This is hacky, but it's the only downside to the json-iter library.
func tryExtractErrorMessage(err error) string {
	msg := err.Error()

	msgEndIndex := strings.LastIndex(msg, ", error found in #")
	if msgEndIndex == -1 {
		return msg
	}

	msgStartIndex := strings.Index(msg, ": ")
	if msgStartIndex == -1 {
		return msg
	}

	operationStack := strings.Split(msg[0:msgStartIndex], ": ")
	if len(operationStack) == 0 {
		return msg[msgStartIndex+2 : msgEndIndex]
	}
	return "cannot unmarshal " + operationStack[len(operationStack)-1] + ": " + msg[msgStartIndex+2:msgEndIndex]
}

// UnmarshalError is returned when unmarshaling fails.
type UnmarshalError struct {
	msg string
}

func (e *UnmarshalError) Error() string {
	return e.msg
}

// MarshalError is returned when marshaling fails.
type MarshalError struct {
	msg string
}

func (e *MarshalError) Error() string {
	return e.msg
}
