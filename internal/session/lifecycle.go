package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRequestPending is returned when a request is started while another one
// for the same session has not settled.
var ErrRequestPending = errors.New("an analysis request is already in progress")

// Phase is the request lifecycle position.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSettled Phase = "settled"
)

// RequestKind names what was submitted.
type RequestKind string

const (
	KindProfile RequestKind = "profile"
	KindResume  RequestKind = "resume"
)

// Lifecycle tracks the single outstanding analysis request of a session.
// Idle -> Pending -> Settled; Settled may start again.
type Lifecycle struct {
	Phase     Phase       `json:"phase"`
	Kind      RequestKind `json:"kind,omitempty"`
	Attempt   string      `json:"attempt,omitempty"`
	StartedAt time.Time   `json:"startedAt,omitzero"`
	SettledAt time.Time   `json:"settledAt,omitzero"`
	Err       string      `json:"error,omitempty"`
}

// Pending reports whether a request is in flight.
func (l Lifecycle) Pending() bool {
	return l.Phase == PhasePending
}

// Failed reports whether the last request settled with an error.
func (l Lifecycle) Failed() bool {
	return l.Phase == PhaseSettled && l.Err != ""
}

// Begin moves to Pending with a fresh attempt id.
func (l Lifecycle) Begin(kind RequestKind, now time.Time) (Lifecycle, error) {
	if l.Pending() {
		return l, ErrRequestPending
	}
	return Lifecycle{
		Phase:     PhasePending,
		Kind:      kind,
		Attempt:   uuid.NewString(),
		StartedAt: now,
	}, nil
}

// Settle records the outcome of attempt. It reports false and leaves the
// lifecycle unchanged when attempt is not the pending one, e.g. after a reset.
func (l Lifecycle) Settle(attempt string, err error, now time.Time) (Lifecycle, bool) {
	if !l.Pending() || l.Attempt != attempt {
		return l, false
	}
	out := l
	out.Phase = PhaseSettled
	out.SettledAt = now
	out.Err = ""
	if err != nil {
		out.Err = err.Error()
	}
	return out, true
}
