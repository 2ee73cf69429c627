package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/notify"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) levels() []notify.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Level, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Level
	}
	return out
}

func alwaysOK(context.Context) (bool, string, error)  { return true, "", nil }
func denied(context.Context) (bool, string, error)    { return false, "denied", nil }
func netErr(context.Context) (bool, string, error)    { return false, "", errors.New("connection reset") }

func TestSuccessRetainsMutation(t *testing.T) {
	rec := &recorder{}
	m := New(rec)

	flag := false
	res := m.Apply(context.Background(), Mutation{
		Entity: "category/c1",
		Title:  "update stock",
		Apply:  func() error { flag = true; return nil },
		Revert: func() error { flag = false; return nil },
		Remote: alwaysOK,
	})

	require.True(t, res.OK)
	require.True(t, flag)
	require.Equal(t, []notify.Level{notify.LevelPending, notify.LevelSuccess}, rec.levels())
}

func TestFailureRevertsToSnapshot(t *testing.T) {
	rec := &recorder{}
	m := New(rec)

	flag := false
	res := m.Apply(context.Background(), Mutation{
		Entity: "category/c1",
		Title:  "update stock",
		Apply:  func() error { flag = true; return nil },
		Revert: func() error { flag = false; return nil },
		Remote: denied,
	})

	require.False(t, res.OK)
	require.True(t, res.Reverted)
	require.False(t, flag, "flag must equal its pre-mutation value after settle")
	require.Equal(t, "denied", res.Message)
	require.Equal(t, []notify.Level{notify.LevelPending, notify.LevelError}, rec.levels())
}

func TestTransportErrorRevertsWithGenericFallback(t *testing.T) {
	m := New(nil)

	flag := false
	res := m.Apply(context.Background(), Mutation{
		Apply:  func() error { flag = true; return nil },
		Revert: func() error { flag = false; return nil },
		Remote: netErr,
	})

	require.False(t, res.OK)
	require.False(t, flag)
	require.Equal(t, "connection reset", res.Message)
}

func TestValidationErrorNeverReachesRemote(t *testing.T) {
	m := New(nil)

	called := false
	res := m.Apply(context.Background(), Mutation{
		Apply:  func() error { return errors.New("name is required") },
		Remote: func(context.Context) (bool, string, error) { called = true; return true, "", nil },
	})

	require.False(t, res.OK)
	require.False(t, called)
	require.Equal(t, "name is required", res.Message)
}

func TestPerEntitySerialization(t *testing.T) {
	m := New(nil)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		m.Apply(context.Background(), Mutation{
			Entity: "dish/d1",
			Remote: func(context.Context) (bool, string, error) {
				close(started)
				<-release
				return true, "", nil
			},
		})
	}()

	<-started
	require.True(t, m.Busy("dish/d1"))

	res := m.Apply(context.Background(), Mutation{Entity: "dish/d1", Remote: alwaysOK})
	require.ErrorIs(t, res.Err, ErrInFlight)

	// A different entity is not blocked.
	other := m.Apply(context.Background(), Mutation{Entity: "dish/d2", Remote: alwaysOK})
	require.True(t, other.OK)

	close(release)
	require.Eventually(t, func() bool { return !m.Busy("dish/d1") }, time.Second, 5*time.Millisecond)
}
