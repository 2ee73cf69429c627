package table

type CreateTableDTO struct {
	Number   int    `json:"number" binding:"required,min=1"`
	Section  string `json:"section" binding:"required"`
	Capacity int    `json:"capacity" binding:"min=1"`
}

type UpdateTableDTO struct {
	Number   *int    `json:"number"`
	Section  *string `json:"section"`
	Capacity *int    `json:"capacity"`
}

type ReorderDTO struct {
	Section string `json:"section" binding:"required"`
	FromID  string `json:"from_id" binding:"required"`
	ToID    string `json:"to_id" binding:"required"`
}

type ActiveDTO struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
