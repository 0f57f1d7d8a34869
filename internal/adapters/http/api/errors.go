package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/immoeliza/pricer/internal/app"
	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/internal/domain/property"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNonNumeric       = errors.New("non-numeric feature")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrInternal         = errors.New("internal error")

	// ErrTrailingData means the body holds more than one JSON value.
	ErrTrailingData = errors.New("unexpected data after the record")
)

// opError ties an error to the operation that produced it and to a kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return e.op + ": " + e.kind.Error()
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *opError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// WrapKind annotates err with op and kind; errors.Is matches both.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// kindOf maps domain errors to API kinds.
func kindOf(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return ErrPayloadTooLarge
	case errors.Is(err, property.ErrInvalidRecord):
		return ErrInvalidRequest
	case errors.Is(err, encoding.ErrUnknownCategory):
		return ErrUnknownCategory
	case errors.Is(err, service.ErrNonNumericFeature):
		return ErrNonNumeric
	default:
		return ErrInternal
	}
}

// statusOf returns the HTTP status and wire code for an API error.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrUnknownCategory):
		return http.StatusUnprocessableEntity, "unknown_category"
	case errors.Is(err, ErrNonNumeric):
		return http.StatusUnprocessableEntity, "non_numeric_feature"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
