package session

import "context"

// Mutation edits a state in place. Returning an error discards the edit.
type Mutation func(*State) error

// Store defines persistence operations for session state.
type Store interface {
	// Get returns a snapshot, creating the initial state for an unknown id.
	Get(ctx context.Context, id string) (State, error)
	// Update applies fn atomically and returns the resulting snapshot.
	Update(ctx context.Context, id string, fn Mutation) (State, error)
	Delete(ctx context.Context, id string) error
}
