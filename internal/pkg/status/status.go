// Package status toggles per-entity boolean flags (in-stock, active) keyed
// by (entityID, contextKey) with a server round-trip and automatic revert on
// failure. A dish's stock is keyed by its outlet code; restaurant-wide flags
// use ContextGlobal.
package status

import (
	"context"
	"fmt"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
)

// ContextGlobal is the context key for flags not qualified by an outlet.
const ContextGlobal = "global"

// FlagStore is the local (view-state) home of the flags.
type FlagStore interface {
	Flag(entityID, contextKey string) (bool, error)
	SetFlag(entityID, contextKey string, value bool) error
}

// Effective is the composite visibility rule: both the stock flag and the
// active flag must be true for an entity to read as "in stock".
func Effective(inStock, isActive bool) bool { return inStock && isActive }

// Engine drives flag toggles through the optimistic mutator, so the control
// for an entity is disabled while its request is in flight.
type Engine struct {
	mut *optimistic.Mutator
}

func NewEngine(mut *optimistic.Mutator) *Engine {
	return &Engine{mut: mut}
}

// Set flips the flag locally, pushes it upstream, and reverts to the prior
// value when the server rejects the change.
func (e *Engine) Set(ctx context.Context, store FlagStore, title, entityID, contextKey string, value bool, remote optimistic.Remote) optimistic.Result {
	prev, err := store.Flag(entityID, contextKey)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	if prev == value {
		return optimistic.Result{OK: true}
	}

	return e.mut.Apply(ctx, optimistic.Mutation{
		Entity: fmt.Sprintf("%s/%s", entityID, contextKey),
		Title:  title,
		Apply:  func() error { return store.SetFlag(entityID, contextKey, value) },
		Revert: func() error { return store.SetFlag(entityID, contextKey, prev) },
		Remote: remote,
	})
}

// Busy reports whether a toggle for the (entity, context) pair is in flight.
func (e *Engine) Busy(entityID, contextKey string) bool {
	return e.mut.Busy(fmt.Sprintf("%s/%s", entityID, contextKey))
}
