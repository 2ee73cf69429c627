package banner

import (
	"time"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
)

type CreateBannerDTO struct {
	Title    string            `json:"title" binding:"required"`
	Kind     models.BannerKind `json:"kind" binding:"required"`
	ImageURL string            `json:"image_url" binding:"required"`
	LinkURL  string            `json:"link_url"`
	StartsAt *time.Time        `json:"starts_at"`
	EndsAt   *time.Time        `json:"ends_at"`
}

type UpdateBannerDTO struct {
	Title    *string    `json:"title"`
	ImageURL *string    `json:"image_url"`
	LinkURL  *string    `json:"link_url"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type ReorderDTO struct {
	Kind   models.BannerKind `json:"kind" binding:"required"`
	FromID string            `json:"from_id" binding:"required"`
	ToID   string            `json:"to_id" binding:"required"`
}

type ActiveDTO struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
