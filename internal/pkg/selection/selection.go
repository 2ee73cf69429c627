// Package selection implements bounded multi-select: dish tags (2), per-dish
// upsells (4), universal upsells (10), gallery images (3). The cap is a
// parameter of the set, never a constant of this package.
package selection

import "fmt"

// Result is the outcome of one toggle.
type Result struct {
	Accepted bool     `json:"accepted"`
	Selected []string `json:"selected"`
	// Message is the user-visible warning when an addition is rejected.
	Message string `json:"message,omitempty"`
}

// Set is a bounded selection preserving insertion order.
type Set struct {
	max int
	ids []string
}

// New creates a set with the given cap, seeded with the current selection.
// Removals are always accepted, so an over-cap seed is kept as-is rather
// than silently truncated.
func New(max int, initial ...string) *Set {
	ids := make([]string, 0, len(initial))
	seen := make(map[string]struct{}, len(initial))
	for _, id := range initial {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return &Set{max: max, ids: ids}
}

// Toggle removes id when selected (always accepted), adds it when below the
// cap, and rejects without mutating when the cap is reached.
func (s *Set) Toggle(id string) Result {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return Result{Accepted: true, Selected: s.Selected()}
		}
	}
	if len(s.ids) >= s.max {
		return Result{
			Selected: s.Selected(),
			Message:  fmt.Sprintf("you can select at most %d items", s.max),
		}
	}
	s.ids = append(s.ids, id)
	return Result{Accepted: true, Selected: s.Selected()}
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Selected returns the selection in insertion order.
func (s *Set) Selected() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the current selection size.
func (s *Set) Len() int { return len(s.ids) }

// Max returns the configured cap.
func (s *Set) Max() int { return s.max }
