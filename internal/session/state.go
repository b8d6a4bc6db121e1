// Package session holds the per-browser application state of the mentor UI.
package session

import (
	"time"

	"career-mentor/internal/analysis"
	"career-mentor/internal/profile"
	"career-mentor/internal/selection"
)

// Step is the view a session is on.
type Step string

const (
	StepInput   Step = "input"
	StepResults Step = "results"
)

// State is everything a renderer needs for one session.
type State struct {
	ID             string                   `json:"id"`
	Step           Step                     `json:"step"`
	Form           profile.Form             `json:"form"`
	ResumeName     string                   `json:"resumeName,omitempty"`
	Recommendation *analysis.Recommendation `json:"recommendation"`
	Request        Lifecycle                `json:"request"`
	SavedStudies   selection.Set            `json:"savedStudies"`
	LikedResources selection.Set            `json:"likedResources"`
	Expanded       selection.Expansion      `json:"expanded"`
	Error          string                   `json:"error,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// New returns the initial state: input step, empty form, nothing selected.
func New(id string, now time.Time) State {
	return State{
		ID:        id,
		Step:      StepInput,
		Request:   Lifecycle{Phase: PhaseIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy with its own Recommendation value. Slices inside are
// shared and must be treated as read-only.
func (s State) Clone() State {
	out := s
	if s.Recommendation != nil {
		rec := *s.Recommendation
		out.Recommendation = &rec
	}
	return out
}

// StudyOptions returns the recommended study options, or nil.
func (s State) StudyOptions() []string {
	if s.Recommendation == nil {
		return nil
	}
	return s.Recommendation.StudyOptions
}
