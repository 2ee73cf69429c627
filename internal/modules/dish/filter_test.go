package dish

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
)

func dishRow(id, name, categoryID string, pri int) models.DishModel {
	d := models.DishModel{Name: name, CategoryID: categoryID, Priority: pri}
	d.ID = id
	return d
}

func testDishes() []models.DishModel {
	// Source order deliberately disagrees with priority order.
	return []models.DishModel{
		dishRow("d3", "Paneer Tikka", "cat1", 3),
		dishRow("d1", "Masala Dosa", "cat1", 1),
		dishRow("d2", "Plain Dosa", "cat1", 2),
		dishRow("d4", "Cold Coffee", "cat2", 1),
		dishRow("d5", "Masala Chai", "cat2", 2),
	}
}

func testMapping() map[string]string {
	return map[string]string{"cat1": "g1", "cat2": "g2"}
}

func allOffered(models.DishModel) bool { return true }

func TestVisibleCategoryBrowseSortsByPriority(t *testing.T) {
	got := Visible(testDishes(), testMapping(), allOffered, FilterState{
		ActiveMenuGroup: "g1",
		ActiveCategory:  "cat1",
	})
	require.Len(t, got, 3)
	require.Equal(t, []string{"d1", "d2", "d3"}, idsOf(got))
}

func TestVisibleNoCategoryNoSearchIsEmpty(t *testing.T) {
	got := Visible(testDishes(), testMapping(), allOffered, FilterState{ActiveMenuGroup: "g1"})
	require.Empty(t, got)
}

func TestVisibleOfferedPredicateFiltersBrowse(t *testing.T) {
	offered := func(d models.DishModel) bool { return d.ID != "d2" }
	got := Visible(testDishes(), testMapping(), offered, FilterState{
		ActiveMenuGroup: "g1",
		ActiveCategory:  "cat1",
	})
	require.Equal(t, []string{"d1", "d3"}, idsOf(got))
}

func TestVisibleSearchKeepsSourceOrder(t *testing.T) {
	got := Visible(testDishes(), testMapping(), allOffered, FilterState{
		ActiveMenuGroup: "g1",
		Search:          "dosa",
	})
	// d1 has priority 1 but appears after d3 in source; search does not sort.
	require.Equal(t, []string{"d1", "d2"}, idsOf(got))

	got = Visible(testDishes(), testMapping(), allOffered, FilterState{
		ActiveMenuGroup: "g1",
		Search:          "a",
	})
	require.Equal(t, []string{"d3", "d1", "d2"}, idsOf(got))
}

func TestVisibleSearchIsScopedToActiveGroup(t *testing.T) {
	got := Visible(testDishes(), testMapping(), allOffered, FilterState{
		ActiveMenuGroup: "g2",
		Search:          "masala",
	})
	require.Equal(t, []string{"d5"}, idsOf(got))
}

func TestVisibleSearchIsCaseInsensitive(t *testing.T) {
	got := Visible(testDishes(), testMapping(), allOffered, FilterState{
		ActiveMenuGroup: "g1",
		Search:          "PANEER",
	})
	require.Equal(t, []string{"d3"}, idsOf(got))
}

func TestVisibleClearingSearchRestoresCategoryView(t *testing.T) {
	st := FilterState{ActiveMenuGroup: "g1", ActiveCategory: "cat1", Search: "dosa"}
	searched := Visible(testDishes(), testMapping(), allOffered, st)
	require.Equal(t, []string{"d1", "d2"}, idsOf(searched))

	st.Search = ""
	browsed := Visible(testDishes(), testMapping(), allOffered, st)
	require.Equal(t, []string{"d1", "d2", "d3"}, idsOf(browsed))
}

func TestVisibleIsPure(t *testing.T) {
	dishes := testDishes()
	st := FilterState{ActiveMenuGroup: "g1", ActiveCategory: "cat1"}

	first := Visible(dishes, testMapping(), allOffered, st)
	second := Visible(dishes, testMapping(), allOffered, st)
	require.Equal(t, first, second)

	// The input slice keeps its original order.
	require.Equal(t, []string{"d3", "d1", "d2", "d4", "d5"}, idsOf(dishes))
}

func idsOf(dishes []models.DishModel) []string {
	out := make([]string, len(dishes))
	for i, d := range dishes {
		out[i] = d.ID
	}
	return out
}
