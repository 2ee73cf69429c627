// Package priority implements dense per-partition ordering for menu groups,
// categories, dishes, addon items, site links and tables.
//
// Within one partition priorities always form the contiguous set {1..n}.
// Reordering is array-move: the moved item lands exactly at the target's
// pre-move index, everything in between shifts by one, then the whole
// partition is renumbered. Partitions are independent; a reorder never
// touches priorities outside the affected partition.
package priority

import "sync"

// Update is one (id, priority) pair of a commit payload.
type Update struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
}

// Move reinserts the item identified by fromID at the index currently held
// by toID, shifting intermediate items. Returns false without mutating the
// slice when fromID equals toID or either id is absent.
func Move[T any](items []T, idOf func(T) string, fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	from, to := -1, -1
	for i, it := range items {
		switch idOf(it) {
		case fromID:
			from = i
		case toID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return false
	}
	moved := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = moved
	return true
}

// Renumber assigns dense 1-based priorities in slice order.
func Renumber[T any](items []T, set func(T, int)) {
	for i, it := range items {
		set(it, i+1)
	}
}

// Next returns the priority for an item appended to a partition: one below
// the current minimum when there is room above the lower bound, otherwise
// one past the current maximum; 1 for an empty partition.
func Next[T any](items []T, priOf func(T) int) int {
	if len(items) == 0 {
		return 1
	}
	min, max := priOf(items[0]), priOf(items[0])
	for _, it := range items[1:] {
		p := priOf(it)
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min > 1 {
		return min - 1
	}
	return max + 1
}

// Updates builds the commit payload for one partition in slice order.
func Updates[T any](items []T, idOf func(T) string, priOf func(T) int) []Update {
	out := make([]Update, len(items))
	for i, it := range items {
		out[i] = Update{ID: idOf(it), Priority: priOf(it)}
	}
	return out
}

// Tracker records which partitions have an uncommitted order change and the
// priority snapshot taken when each partition first became dirty, so a
// failed commit can restore the pre-reorder order. Multiple reorders before
// one save coalesce: only the final order is committed, against the oldest
// baseline.
type Tracker struct {
	mu       sync.Mutex
	baseline map[string][]Update
}

func NewTracker() *Tracker {
	return &Tracker{baseline: make(map[string][]Update)}
}

// MarkDirty flags a partition, keeping the first baseline it ever saw.
func (t *Tracker) MarkDirty(partition string, before []Update) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.baseline[partition]; ok {
		return
	}
	snap := make([]Update, len(before))
	copy(snap, before)
	t.baseline[partition] = snap
}

// Dirty returns the partitions with uncommitted changes.
func (t *Tracker) Dirty() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.baseline))
	for p := range t.baseline {
		out = append(out, p)
	}
	return out
}

// IsDirty reports whether the partition has uncommitted changes.
func (t *Tracker) IsDirty(partition string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.baseline[partition]
	return ok
}

// Baseline returns the snapshot captured when the partition became dirty,
// or nil when the partition is clean.
func (t *Tracker) Baseline(partition string) []Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap, ok := t.baseline[partition]
	if !ok {
		return nil
	}
	out := make([]Update, len(snap))
	copy(out, snap)
	return out
}

// Clear marks a partition clean after a successful commit (or a rollback).
func (t *Tracker) Clear(partition string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.baseline, partition)
}
