package property

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRecord    = errors.New("invalid property record")
	ErrNullValue        = errors.New("null is not a valid value")
	ErrUnsupportedValue = errors.New("value must be a string, number or boolean")
	ErrNotFinite        = errors.New("value is not a finite number")
	ErrUnknownColumn    = errors.New("unknown column")
)

// FieldError describes one offending column.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FieldErrors is returned by Validate. It matches ErrInvalidRecord.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Reason)
	}
	return ErrInvalidRecord.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidRecord) succeed.
func (e FieldErrors) Is(target error) bool {
	return target == ErrInvalidRecord
}
