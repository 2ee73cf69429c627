package menu

import "github.com/kalpit-muncho/dashboard-core/internal/models"

type CreateGroupDTO struct {
	Name string `json:"name" binding:"required"`
}

type UpdateGroupDTO struct {
	Name string `json:"name" binding:"required"`
}

type ReorderDTO struct {
	FromID string `json:"from_id" binding:"required"`
	ToID   string `json:"to_id" binding:"required"`
}

type StockDTO struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

type ActiveDTO struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// groupView adds the composite visibility read to the stored flags.
type groupView struct {
	models.MenuGroupModel
	Visible bool `json:"visible"`
}

func toView(g models.MenuGroupModel) groupView {
	return groupView{MenuGroupModel: g, Visible: g.Visible()}
}

// LayoutReport aggregates the outcome of one combined layout save. Succeeded
// partitions stay committed even when the combined save reports failure.
type LayoutReport struct {
	Saved  []string `json:"saved"`
	Failed []string `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

func (r LayoutReport) OK() bool { return len(r.Failed) == 0 }
