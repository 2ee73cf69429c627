package category

import "github.com/kalpit-muncho/dashboard-core/internal/models"

type CreateCategoryDTO struct {
	Name        string `json:"name" binding:"required"`
	MenuGroupID string `json:"menu_group_id" binding:"required"`
}

type UpdateCategoryDTO struct {
	Name string `json:"name" binding:"required"`
}

type ReorderDTO struct {
	MenuGroupID string `json:"menu_group_id" binding:"required"`
	FromID      string `json:"from_id" binding:"required"`
	ToID        string `json:"to_id" binding:"required"`
}

type StockDTO struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

type ActiveDTO struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type categoryView struct {
	models.CategoryModel
	Visible bool `json:"visible"`
}

func toView(c models.CategoryModel) categoryView {
	return categoryView{CategoryModel: c, Visible: c.Visible()}
}
