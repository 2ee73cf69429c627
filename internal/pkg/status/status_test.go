package status

import (
	"context"
	"testing"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/stretchr/testify/require"
)

type memStore map[string]bool

func (m memStore) key(id, ctx string) string { return id + "|" + ctx }

func (m memStore) Flag(id, ctx string) (bool, error) { return m[m.key(id, ctx)], nil }

func (m memStore) SetFlag(id, ctx string, v bool) error {
	m[m.key(id, ctx)] = v
	return nil
}

func TestToggleSuccessKeepsNewValue(t *testing.T) {
	store := memStore{}
	eng := NewEngine(optimistic.New(nil))

	res := eng.Set(context.Background(), store, "category stock", "c1", ContextGlobal, true,
		func(context.Context) (bool, string, error) { return true, "", nil })

	require.True(t, res.OK)
	v, _ := store.Flag("c1", ContextGlobal)
	require.True(t, v)
}

func TestToggleFailureRevertsAndCarriesServerMessage(t *testing.T) {
	store := memStore{"c1|global": false}
	eng := NewEngine(optimistic.New(nil))

	res := eng.Set(context.Background(), store, "category stock", "c1", ContextGlobal, true,
		func(context.Context) (bool, string, error) { return false, "denied", nil })

	require.False(t, res.OK)
	require.Equal(t, "denied", res.Message)
	v, _ := store.Flag("c1", ContextGlobal)
	require.False(t, v, "flag must revert to its prior value")
}

func TestPerOutletFlagsAreIndependent(t *testing.T) {
	store := memStore{}
	eng := NewEngine(optimistic.New(nil))
	ok := func(context.Context) (bool, string, error) { return true, "", nil }

	eng.Set(context.Background(), store, "dish stock", "d1", "outlet-a", true, ok)
	eng.Set(context.Background(), store, "dish stock", "d1", "outlet-b", false, ok)

	a, _ := store.Flag("d1", "outlet-a")
	b, _ := store.Flag("d1", "outlet-b")
	require.True(t, a)
	require.False(t, b)
}

func TestNoOpWhenValueUnchanged(t *testing.T) {
	store := memStore{"c1|global": true}
	eng := NewEngine(optimistic.New(nil))

	called := false
	res := eng.Set(context.Background(), store, "category stock", "c1", ContextGlobal, true,
		func(context.Context) (bool, string, error) { called = true; return true, "", nil })

	require.True(t, res.OK)
	require.False(t, called, "no remote call when the flag already holds the value")
}

func TestEffective(t *testing.T) {
	require.True(t, Effective(true, true))
	require.False(t, Effective(true, false))
	require.False(t, Effective(false, true))
	require.False(t, Effective(false, false))
}
