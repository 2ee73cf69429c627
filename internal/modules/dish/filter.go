package dish

import (
	"sort"
	"strings"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
)

// FilterState is the ephemeral browse state of one dashboard screen. It is
// derived input only; Visible owns no mutation authority.
type FilterState struct {
	ActiveMenuGroup string
	ActiveCategory  string
	Search          string
}

// Visible computes the dish list for the current filter state as a pure
// function of its inputs.
//
// With an empty search and an active category it returns that category's
// offered dishes in priority order. With an empty search and no category it
// returns nothing. A non-empty search matches names case-insensitively within
// the active menu group (categoryGroup maps category id to menu group id) and
// keeps source order: search is a quick lookup, not a sorted browse.
func Visible(dishes []models.DishModel, categoryGroup map[string]string, offered func(models.DishModel) bool, st FilterState) []models.DishModel {
	search := strings.TrimSpace(st.Search)

	if search != "" {
		needle := strings.ToLower(search)
		out := make([]models.DishModel, 0)
		for _, d := range dishes {
			if categoryGroup[d.CategoryID] != st.ActiveMenuGroup {
				continue
			}
			if strings.Contains(strings.ToLower(d.Name), needle) {
				out = append(out, d)
			}
		}
		return out
	}

	if st.ActiveCategory == "" {
		return []models.DishModel{}
	}

	out := make([]models.DishModel, 0)
	for _, d := range dishes {
		if d.CategoryID != st.ActiveCategory {
			continue
		}
		if offered != nil && !offered(d) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
