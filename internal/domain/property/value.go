package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a submitted attribute: either text or a number.
// The zero Value is the number 0.
type Value struct {
	text   string
	number float64
	isText bool
}

// Text returns a textual Value.
func Text(s string) Value { return Value{text: s, isText: true} }

// Number returns a numeric Value.
func Number(f float64) Value { return Value{number: f} }

// IsText reports whether v holds text.
func (v Value) IsText() bool { return v.isText }

// Float returns the numeric content of v. ok is false for text.
func (v Value) Float() (f float64, ok bool) {
	if v.isText {
		return 0, false
	}
	return v.number, true
}

// String renders v canonically: text as-is, numbers in shortest form (1990, 1, 0.5).
func (v Value) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.number, 'f', -1, 64)
}

// MarshalJSON encodes text as a JSON string and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isText {
		return json.Marshal(v.text)
	}
	if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNotFinite, v.number)
	}
	return json.Marshal(v.number)
}

// UnmarshalJSON accepts strings, numbers and booleans (true=1, false=0).
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return ErrNullValue
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(b, []byte("true")):
		*v = Number(1)
	case bytes.Equal(b, []byte("false")):
		*v = Number(0)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedValue, string(b))
		}
		*v = Number(f)
	}
	return nil
}
