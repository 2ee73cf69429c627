package priority

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	id  string
	pri int
}

func id(r *row) string      { return r.id }
func pri(r *row) int        { return r.pri }
func setPri(r *row, p int)  { r.pri = p }
func mk(ids ...string) []*row {
	out := make([]*row, len(ids))
	for i, s := range ids {
		out[i] = &row{id: s, pri: i + 1}
	}
	return out
}

func order(items []*row) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.id
	}
	return out
}

func TestMoveLandsAtTargetIndex(t *testing.T) {
	items := mk("A", "B", "C")
	require.True(t, Move(items, id, "C", "A"))
	Renumber(items, setPri)

	require.Equal(t, []string{"C", "A", "B"}, order(items))
	for i, r := range items {
		require.Equal(t, i+1, r.pri)
	}
}

func TestMoveForward(t *testing.T) {
	items := mk("A", "B", "C", "D")
	require.True(t, Move(items, id, "A", "C"))
	require.Equal(t, []string{"B", "C", "A", "D"}, order(items))
}

func TestMoveNoOpCases(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{"same id", "B", "B"},
		{"missing from", "Z", "B"},
		{"missing to", "B", "Z"},
		{"both missing", "Y", "Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := mk("A", "B", "C")
			require.False(t, Move(items, id, tt.from, tt.to))
			require.Equal(t, []string{"A", "B", "C"}, order(items))
			for i, r := range items {
				require.Equal(t, i+1, r.pri)
			}
		})
	}
}

func TestPrioritiesStayDenseAfterRandomReorders(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := mk("a", "b", "c", "d", "e", "f", "g")

	for i := 0; i < 200; i++ {
		from := items[rng.Intn(len(items))].id
		to := items[rng.Intn(len(items))].id
		Move(items, id, from, to)
		Renumber(items, setPri)

		seen := make(map[int]bool, len(items))
		for _, r := range items {
			require.False(t, seen[r.pri], "duplicate priority %d", r.pri)
			require.GreaterOrEqual(t, r.pri, 1)
			require.LessOrEqual(t, r.pri, len(items))
			seen[r.pri] = true
		}
	}
}

func TestNextPriorityRule(t *testing.T) {
	tests := []struct {
		name string
		pris []int
		want int
	}{
		{"empty partition", nil, 1},
		{"single item at lower bound", []int{1}, 2},
		{"min above lower bound", []int{2, 3}, 1},
		{"min at bound falls back to max+1", []int{1, 3}, 4},
		{"dense list appends", []int{1, 2, 3}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]*row, len(tt.pris))
			for i, p := range tt.pris {
				items[i] = &row{pri: p}
			}
			require.Equal(t, tt.want, Next(items, pri))
		})
	}
}

func TestTrackerKeepsFirstBaseline(t *testing.T) {
	tr := NewTracker()
	require.Empty(t, tr.Dirty())

	tr.MarkDirty("g1", []Update{{ID: "A", Priority: 1}, {ID: "B", Priority: 2}})
	tr.MarkDirty("g1", []Update{{ID: "B", Priority: 1}, {ID: "A", Priority: 2}})

	require.True(t, tr.IsDirty("g1"))
	require.Equal(t, []Update{{ID: "A", Priority: 1}, {ID: "B", Priority: 2}}, tr.Baseline("g1"))
}

func TestTrackerClearAndIsolation(t *testing.T) {
	tr := NewTracker()
	tr.MarkDirty("g1", []Update{{ID: "A", Priority: 1}})
	tr.MarkDirty("g2", []Update{{ID: "X", Priority: 1}})

	require.ElementsMatch(t, []string{"g1", "g2"}, tr.Dirty())

	tr.Clear("g1")
	require.False(t, tr.IsDirty("g1"))
	require.Nil(t, tr.Baseline("g1"))
	require.True(t, tr.IsDirty("g2"))
}

func TestUpdatesFollowSliceOrder(t *testing.T) {
	items := mk("A", "B", "C")
	Move(items, id, "C", "A")
	Renumber(items, setPri)

	require.Equal(t, []Update{
		{ID: "C", Priority: 1},
		{ID: "A", Priority: 2},
		{ID: "B", Priority: 3},
	}, Updates(items, id, pri))
}
