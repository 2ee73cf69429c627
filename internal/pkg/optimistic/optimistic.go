// Package optimistic applies a local state change immediately, pushes it to
// the platform API, and reconciles: keep on success, restore the previous
// state and surface the failure on rejection. One mutation per entity may be
// in flight at a time; there is no automatic retry above the transport layer.
package optimistic

import (
	"context"
	"errors"
	"sync"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/notify"
)

// ErrInFlight is returned when a mutation for the same entity has not
// settled yet.
var ErrInFlight = errors.New("optimistic: mutation already in flight for entity")

// Remote pushes the already-applied local change to the system of record.
// ok follows the upstream envelope: false means application-level failure
// even when err is nil.
type Remote func(ctx context.Context) (ok bool, message string, err error)

// Result is the settled outcome of one optimistic mutation.
type Result struct {
	OK       bool
	Message  string
	Reverted bool
	Err      error
}

// Mutation describes one optimistic state change.
type Mutation struct {
	// Entity serializes concurrent mutations: two mutations with the same
	// key never overlap. Usually "<kind>/<id>" or "<kind>/<id>/<context>".
	Entity string
	// Title names the operation in notifications.
	Title string
	// Apply performs the local change. An error here is a validation
	// failure: nothing is sent upstream and nothing needs reverting.
	Apply func() error
	// Revert restores the pre-mutation snapshot after a remote failure.
	Revert func() error
	// Remote pushes the change upstream.
	Remote Remote
}

// Mutator runs optimistic mutations and reports outcomes to a notifier.
type Mutator struct {
	notifier notify.Notifier

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(notifier notify.Notifier) *Mutator {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Mutator{
		notifier: notifier,
		inflight: make(map[string]struct{}),
	}
}

// Apply runs the mutation to completion. The local change is visible before
// the remote call is made; on remote failure the snapshot is restored and
// the server message (or a generic one) is surfaced.
func (m *Mutator) Apply(ctx context.Context, mut Mutation) Result {
	if mut.Entity != "" {
		m.mu.Lock()
		if _, busy := m.inflight[mut.Entity]; busy {
			m.mu.Unlock()
			return Result{Message: "another change for this item is still saving", Err: ErrInFlight}
		}
		m.inflight[mut.Entity] = struct{}{}
		m.mu.Unlock()
		defer func() {
			m.mu.Lock()
			delete(m.inflight, mut.Entity)
			m.mu.Unlock()
		}()
	}

	if mut.Apply != nil {
		if err := mut.Apply(); err != nil {
			return Result{Message: err.Error(), Err: err}
		}
	}

	m.notifier.Notify(notify.Event{Level: notify.LevelPending, Title: mut.Title, Entity: mut.Entity})

	ok, message, err := mut.Remote(ctx)
	if ok && err == nil {
		m.notifier.Notify(notify.Event{Level: notify.LevelSuccess, Title: mut.Title, Entity: mut.Entity})
		return Result{OK: true, Message: message}
	}

	reverted := false
	if mut.Revert != nil {
		if revertErr := mut.Revert(); revertErr == nil {
			reverted = true
		}
	}

	if message == "" {
		if err != nil {
			message = err.Error()
		} else {
			message = "something went wrong, please try again"
		}
	}
	m.notifier.Notify(notify.Event{Level: notify.LevelError, Title: mut.Title, Message: message, Entity: mut.Entity})
	return Result{Message: message, Reverted: reverted, Err: err}
}

// Busy reports whether a mutation for the entity is currently in flight.
// Handlers use it to disable the corresponding control.
func (m *Mutator) Busy(entity string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[entity]
	return ok
}
