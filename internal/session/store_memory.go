package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store with idle expiry.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]State // session id -> state
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore constructs a MemoryStore. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]State),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the session, starting a fresh one if id is unknown or expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.RLock()
	st, ok := s.data[id]
	s.mu.RUnlock()
	if ok && !s.expired(st) {
		return st.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok = s.data[id]
	if !ok || s.expired(st) {
		st = New(id, s.now())
		s.data[id] = st
	}
	return st.Clone(), nil
}

// Update runs fn under the write lock. The stored state only changes when fn
// succeeds.
func (s *MemoryStore) Update(ctx context.Context, id string, fn Mutation) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data[id]
	if !ok || s.expired(current) {
		current = New(id, s.now())
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return current.Clone(), err
	}
	next.ID = id
	next.UpdatedAt = s.now()
	s.data[id] = next
	return next.Clone(), nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
// Sessions with a pending request are kept.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, st := range s.data {
		if s.expired(st) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err == nil && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *MemoryStore) expired(st State) bool {
	if s.ttl <= 0 || st.Request.Pending() {
		return false
	}
	return s.now().Sub(st.UpdatedAt) > s.ttl
}

var _ Store = (*MemoryStore)(nil)
