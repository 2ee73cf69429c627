package models

// ThemeModel is the singleton appearance record for the restaurant.
// Gallery holds at most three image URLs.
type ThemeModel struct {
	Base
	PrimaryColor   string      `json:"primary_color"   gorm:"type:varchar(16)"`
	SecondaryColor string      `json:"secondary_color" gorm:"type:varchar(16)"`
	FontFamily     string      `json:"font_family"     gorm:"type:varchar(64)"`
	LogoURL        string      `json:"logo_url"`
	Gallery        StringArray `json:"gallery"         gorm:"type:longtext;serializer:json"`
}

func (ThemeModel) TableName() string { return "themes" }

// SiteLinkModel is an external link shown on the customer-facing site
// (Instagram, Google reviews, ...). All links share one "links" partition.
type SiteLinkModel struct {
	Base
	Label    string `json:"label"    gorm:"not null"`
	URL      string `json:"url"      gorm:"not null"`
	Priority int    `json:"priority" gorm:"not null"`
}

func (SiteLinkModel) TableName() string { return "site_links" }
