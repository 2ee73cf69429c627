package dish

import "github.com/kalpit-muncho/dashboard-core/internal/models"

// Selection caps per call site.
const (
	MaxTags             = 2
	MaxUpsells          = 4
	MaxUniversalUpsells = 10
	MaxGallery          = 3
)

type CreateDishDTO struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id" binding:"required"`
	Price       int             `json:"price" binding:"min=0"`
	Type        models.DishType `json:"type"`
	ImageURL    string          `json:"image_url"`
}

type UpdateDishDTO struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *int             `json:"price"`
	Type        *models.DishType `json:"type"`
	ImageURL    *string          `json:"image_url"`
}

type ReorderDTO struct {
	CategoryID string `json:"category_id" binding:"required"`
	FromID     string `json:"from_id" binding:"required"`
	ToID       string `json:"to_id" binding:"required"`
}

type StockDTO struct {
	OutletCode string `json:"outlet_code" binding:"required"`
	InStock    *bool  `json:"in_stock" binding:"required"`
}

type ToggleDTO struct {
	ID string `json:"id" binding:"required"`
}

type GalleryRemoveDTO struct {
	URL string `json:"url" binding:"required"`
}
