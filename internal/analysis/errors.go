package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrService marks a response that arrived but reported failure.
	ErrService = errors.New("analysis service reported failure")
	// ErrUnreachable marks a request that never produced a response.
	ErrUnreachable = errors.New("analysis service unreachable")
)

const (
	fallbackAnalyzeMessage = "Failed to analyze career path"
	fallbackResumeMessage  = "Failed to process resume"

	unreachableAnalyzeMessage = "Cannot connect to backend. Make sure the analysis service is running!"
	unreachableResumeMessage  = "Cannot upload resume. Make sure backend is running!"
)

// ServiceError carries the message to show the user for a failed analysis.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return ErrService
}

// ConnectivityError wraps the transport failure behind an unreachable service.
type ConnectivityError struct {
	Op      string
	Message string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return e.Message
}

// Unwrap exposes both ErrUnreachable and the transport error.
func (e *ConnectivityError) Unwrap() []error {
	return []error{ErrUnreachable, e.Err}
}

// Detail renders the error with its cause for logs.
func (e *ConnectivityError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// UserMessage returns the text to display for err.
func UserMessage(err error) string {
	var svc *ServiceError
	if errors.As(err, &svc) {
		return svc.Message
	}
	var conn *ConnectivityError
	if errors.As(err, &conn) {
		return conn.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
