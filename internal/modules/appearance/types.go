package appearance

type UpdateThemeDTO struct {
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	FontFamily     *string `json:"font_family"`
	LogoURL        *string `json:"logo_url"`
}

type CreateLinkDTO struct {
	Label string `json:"label" binding:"required"`
	URL   string `json:"url" binding:"required"`
}

type UpdateLinkDTO struct {
	Label *string `json:"label"`
	URL   *string `json:"url"`
}

type ReorderDTO struct {
	FromID string `json:"from_id" binding:"required"`
	ToID   string `json:"to_id" binding:"required"`
}

type GalleryRemoveDTO struct {
	URL string `json:"url" binding:"required"`
}
