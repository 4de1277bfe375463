package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNoCartToken  = errors.New("cart snapshot missing; order cannot be composed")
	ErrFormNotValid = errors.New("form did not pass validation")
)

// StatusError is a non-2xx upstream response. 4xx is permanent; 5xx may be
// retried once.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.URL, e.Status)
}

func (e *StatusError) Permanent() bool { return e.Status >= 400 && e.Status < 500 }

// StepFailure marks which pipeline step failed so callers can pick the
// right shopper-facing message.
type StepFailure struct {
	Step Step
	Err  error
}

func (e *StepFailure) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *StepFailure) Unwrap() error { return e.Err }
