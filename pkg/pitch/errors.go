package pitch

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrMalformedRecord    = errors.New("malformed record")
	ErrUnsupportedVariant = errors.New("unsupported record variant")
)

// DecodeError describes why a single payload could not be decoded.
// It wraps either ErrMalformedRecord or ErrUnsupportedVariant.
type DecodeError struct {
	Tag     Tag
	Field   string
	Reason  string
	Payload string
	Err     error
}

// Error implements error interface
func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s record: %s", e.Err, e.Tag, e.Reason)
	}
	return fmt.Sprintf("%v: %s record: field %s: %s", e.Err, e.Tag, e.Field, e.Reason)
}

// Unwrap returns the sentinel error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(tag Tag, payload, field, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Tag:     tag,
		Field:   field,
		Reason:  fmt.Sprintf(format, args...),
		Payload: payload,
		Err:     ErrMalformedRecord,
	}
}
