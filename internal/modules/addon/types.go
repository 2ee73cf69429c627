package addon

type CreateGroupDTO struct {
	Name         string `json:"name" binding:"required"`
	MinSelection int    `json:"min_selection" binding:"min=0"`
	MaxSelection int    `json:"max_selection" binding:"min=1"`
}

type UpdateGroupDTO struct {
	Name         *string `json:"name"`
	MinSelection *int    `json:"min_selection"`
	MaxSelection *int    `json:"max_selection"`
}

type CreateItemDTO struct {
	GroupID string `json:"group_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Price   int    `json:"price" binding:"min=0"`
}

type UpdateItemDTO struct {
	Name  *string `json:"name"`
	Price *int    `json:"price"`
}

type ReorderItemsDTO struct {
	GroupID string `json:"group_id" binding:"required"`
	FromID  string `json:"from_id" binding:"required"`
	ToID    string `json:"to_id" binding:"required"`
}

type StockDTO struct {
	InStock *bool `json:"in_stock" binding:"required"`
}

type AttachDTO struct {
	GroupID string `json:"group_id" binding:"required"`
}
