package category

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
)

func TestDirtyGroups(t *testing.T) {
	tracker := priority.NewTracker()
	svc := NewService(nil, nil, nil, tracker, nil)

	require.Empty(t, svc.DirtyGroups())

	tracker.MarkDirty(partitionKey("g1"), nil)
	tracker.MarkDirty(partitionKey("g2"), nil)
	// Partitions of other modules share the tracker and must not leak in.
	tracker.MarkDirty("menu_groups", nil)
	tracker.MarkDirty("tables/patio", nil)

	require.ElementsMatch(t, []string{"g1", "g2"}, svc.DirtyGroups())

	tracker.Clear(partitionKey("g1"))
	require.Equal(t, []string{"g2"}, svc.DirtyGroups())
}
