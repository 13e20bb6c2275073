package inspect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks resolver calls with a nil or malformed input.
// These fail fast and abort the session.
var ErrInvalidArgument = errors.New("invalid argument")

// RegistrationError wraps any failure while instantiating an additional
// inspector through a factory. Callers cannot recover differently per
// underlying cause, so every cause collapses into this one type.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("inspector registration failed: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ValidationError reports required facts that match no entry in the
// canonical fact-name registry. It is surfaced only by the explicit
// Validate pass; the pipeline itself never raises it.
type ValidationError struct {
	Inspector string
	Unknown   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("inspector %s requires unregistered facts: %s",
		e.Inspector, strings.Join(e.Unknown, ", "))
}
