package jsonutil

import (
	"bytes"
	"strconv"
)

// LooseString accepts a JSON string, number or boolean and keeps it as text, the way
// publisher-entered tag ids arrive from page configs. Zero numbers, false and null
// decode to the empty string so that Truthy reports them as unset. Objects and arrays
// cannot be rendered into a tag and are treated as unset too.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = ""
		return nil
	}

	switch b[0] {
	case '"':
		var str string
		if err := jsonConfigValidationOn.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = LooseString(str)
	case 't':
		*s = "true"
	case 'f', 'n', '{', '[':
		*s = ""
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return &UnmarshalError{msg: "cannot unmarshal " + string(b) + " into a string"}
		}
		if f == 0 {
			*s = ""
		} else {
			*s = LooseString(b)
		}
	}
	return nil
}

// Truthy reports whether the value was set to a non-empty, non-zero value.
func (s LooseString) Truthy() bool {
	return s != ""
}

func (s LooseString) String() string {
	return string(s)
}
