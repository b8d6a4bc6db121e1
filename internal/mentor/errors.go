package mentor

import "errors"

var (
	// ErrInvalidInput marks a submission rejected before any request is sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownItem is returned when a toggle names something that is not
	// on the page.
	ErrUnknownItem = errors.New("unknown item")
	// ErrSuperseded is returned when a finished request no longer belongs to
	// the session, e.g. because the user started over while it was running.
	ErrSuperseded = errors.New("request superseded")
)

// InputError is shown inline next to the form.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.Err}
}

func invalid(msg string, err error) error {
	return &InputError{Message: msg, Err: err}
}
