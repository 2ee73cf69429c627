package models

import "time"

// BannerKind distinguishes scrolling banners from popup ads.
type BannerKind string

const (
	BannerStrip BannerKind = "banner"
	BannerPopup BannerKind = "popup"
)

// BannerModel is a promotional banner or popup ad. Priority is dense within
// its kind. StartsAt/EndsAt bound the display window; the expiry sweep
// deactivates entries past EndsAt.
type BannerModel struct {
	Base
	Title    string     `json:"title"     gorm:"not null"`
	Kind     BannerKind `json:"kind"      gorm:"type:varchar(16);not null;index"`
	ImageURL string     `json:"image_url" gorm:"not null"`
	LinkURL  string     `json:"link_url"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	IsActive bool       `json:"is_active" gorm:"default:true"`
	Priority int        `json:"priority"  gorm:"not null"`
}

func (BannerModel) TableName() string { return "banners" }
