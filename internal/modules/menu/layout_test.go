package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
)

func stubSave(key, label string, res optimistic.Result, ran *[]string) layoutSave {
	return layoutSave{
		key:   key,
		label: label,
		run: func(context.Context) optimistic.Result {
			*ran = append(*ran, key)
			return res
		},
	}
}

func TestRunLayoutSavesAllSucceed(t *testing.T) {
	var ran []string
	report := runLayoutSaves(context.Background(), []layoutSave{
		stubSave("menu_groups", "menu groups", optimistic.Result{OK: true}, &ran),
		stubSave("categories/g1", "categories g1", optimistic.Result{OK: true}, &ran),
	})

	require.True(t, report.OK())
	require.Equal(t, []string{"menu_groups", "categories/g1"}, report.Saved)
	require.Empty(t, report.Failed)
	require.Empty(t, report.Errors)
	require.Equal(t, []string{"menu_groups", "categories/g1"}, ran)
}

func TestRunLayoutSavesPartialFailure(t *testing.T) {
	var ran []string
	report := runLayoutSaves(context.Background(), []layoutSave{
		stubSave("menu_groups", "menu groups", optimistic.Result{OK: true}, &ran),
		stubSave("categories/g1", "categories g1",
			optimistic.Result{Message: "denied", Reverted: true}, &ran),
		stubSave("categories/g2", "categories g2", optimistic.Result{OK: true}, &ran),
	})

	// The combined save reports failure, but every sub-save still ran and
	// the succeeded partitions stay recorded as saved.
	require.False(t, report.OK())
	require.Equal(t, []string{"menu_groups", "categories/g2"}, report.Saved)
	require.Equal(t, []string{"categories/g1"}, report.Failed)
	require.Equal(t, []string{"categories g1: denied"}, report.Errors)
	require.Equal(t, []string{"menu_groups", "categories/g1", "categories/g2"}, ran)
}

func TestRunLayoutSavesAllFail(t *testing.T) {
	var ran []string
	report := runLayoutSaves(context.Background(), []layoutSave{
		stubSave("menu_groups", "menu groups", optimistic.Result{Message: "offline"}, &ran),
		stubSave("categories/g1", "categories g1", optimistic.Result{Message: "offline"}, &ran),
	})

	require.False(t, report.OK())
	require.Empty(t, report.Saved)
	require.Equal(t, []string{"menu_groups", "categories/g1"}, report.Failed)
	require.Equal(t, []string{"menu groups: offline", "categories g1: offline"}, report.Errors)
}

func TestRunLayoutSavesNothingDirty(t *testing.T) {
	report := runLayoutSaves(context.Background(), nil)

	require.True(t, report.OK())
	require.Empty(t, report.Saved)
	require.Empty(t, report.Failed)
}
