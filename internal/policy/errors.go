package policy

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is matched by every LoadError via errors.Is.
var ErrInvalidPolicy = errors.New("invalid policy")

// LoadError reports a policy document that cannot be used. Field names the
// offending document key (dotted for nested keys) when one is known.
type LoadError struct {
	Field string
	Msg   string
	Err   error
}

func (e *LoadError) Error() string {
	msg := "policy"
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrInvalidPolicy }

func fieldError(field, format string, args ...any) error {
	return &LoadError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
