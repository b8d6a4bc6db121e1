// Package selection implements the bookmark and expanded-panel state used by
// the results views.
package selection

import (
	"encoding/json"
	"slices"
)

// Set is an ordered, duplicate-free list of selected names. The zero value is
// an empty set. Methods never mutate the receiver.
type Set struct {
	items []string
}

// NewSet builds a set from items, dropping duplicates after the first.
func NewSet(items ...string) Set {
	var s Set
	for _, item := range items {
		if !s.Contains(item) {
			s.items = append(s.items, item)
		}
	}
	return s
}

// Toggle removes item if present, otherwise appends it.
func (s Set) Toggle(item string) Set {
	if idx := slices.Index(s.items, item); idx >= 0 {
		out := make([]string, 0, len(s.items)-1)
		out = append(out, s.items[:idx]...)
		out = append(out, s.items[idx+1:]...)
		return Set{items: out}
	}
	out := make([]string, 0, len(s.items)+1)
	out = append(out, s.items...)
	out = append(out, item)
	return Set{items: out}
}

// Contains reports exact-match membership.
func (s Set) Contains(item string) bool {
	return slices.Contains(s.items, item)
}

// Clear returns the empty set.
func (s Set) Clear() Set {
	return Set{}
}

// Items returns the members in insertion order.
func (s Set) Items() []string {
	return slices.Clone(s.items)
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.items)
}

// Expansion is the single-slot expanded-panel state. The zero value has
// nothing expanded.
type Expansion struct {
	index    int
	expanded bool
}

// Toggle collapses index if it is the expanded one, otherwise expands it and
// collapses any other.
func (e Expansion) Toggle(index int) Expansion {
	if e.expanded && e.index == index {
		return Expansion{}
	}
	return Expansion{index: index, expanded: true}
}

// Index returns the expanded index, if any.
func (e Expansion) Index() (int, bool) {
	return e.index, e.expanded
}

// IsExpanded reports whether index is the expanded one.
func (e Expansion) IsExpanded(index int) bool {
	return e.expanded && e.index == index
}

// MarshalJSON encodes the set as an array, never null.
func (s Set) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// MarshalJSON encodes the expanded index, or null when nothing is expanded.
func (e Expansion) MarshalJSON() ([]byte, error) {
	if !e.expanded {
		return []byte("null"), nil
	}
	return json.Marshal(e.index)
}
