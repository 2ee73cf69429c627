package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggleAddAndRemove(t *testing.T) {
	s := New(3)

	res := s.Toggle("veg")
	require.True(t, res.Accepted)
	require.Equal(t, []string{"veg"}, res.Selected)

	res = s.Toggle("egg")
	require.True(t, res.Accepted)
	require.Equal(t, []string{"veg", "egg"}, res.Selected)

	// Removal keeps insertion order of the rest.
	res = s.Toggle("veg")
	require.True(t, res.Accepted)
	require.Equal(t, []string{"egg"}, res.Selected)
}

func TestOverCapRejectedWithoutMutation(t *testing.T) {
	s := New(2, "veg", "egg")

	res := s.Toggle("liquor")
	require.False(t, res.Accepted)
	require.Equal(t, []string{"veg", "egg"}, res.Selected)
	require.Equal(t, "you can select at most 2 items", res.Message)
	require.False(t, s.Has("liquor"))

	// Removing one frees a slot.
	require.True(t, s.Toggle("veg").Accepted)
	require.True(t, s.Toggle("liquor").Accepted)
	require.Equal(t, []string{"egg", "liquor"}, s.Selected())
}

func TestCapNeverExceeded(t *testing.T) {
	for _, max := range []int{2, 4, 10, 3} {
		t.Run(fmt.Sprintf("max=%d", max), func(t *testing.T) {
			s := New(max)
			for i := 0; i < max*3; i++ {
				s.Toggle(fmt.Sprintf("id-%d", i%(max+2)))
				require.LessOrEqual(t, s.Len(), max)
			}
		})
	}
}

func TestSeedDeduplicated(t *testing.T) {
	s := New(4, "a", "b", "a")
	require.Equal(t, []string{"a", "b"}, s.Selected())
}

func TestRemovalAlwaysAcceptedOnOverCapSeed(t *testing.T) {
	// A seed beyond the cap can still be shrunk.
	s := New(1, "a", "b")
	require.Equal(t, 2, s.Len())

	res := s.Toggle("a")
	require.True(t, res.Accepted)
	require.Equal(t, []string{"b"}, res.Selected)

	// But nothing can be added while at or above the cap.
	res = s.Toggle("c")
	require.False(t, res.Accepted)
}
