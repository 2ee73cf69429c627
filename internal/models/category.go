package models

// CategoryModel is a dish category inside one menu group.
// Priorities are dense within the owning menu group (the partition).
type CategoryModel struct {
	Base
	Name        string `json:"name"          gorm:"not null;index:idx_cat_group_name,unique"`
	MenuGroupID string `json:"menu_group_id" gorm:"type:char(36);not null;index;index:idx_cat_group_name,unique"`
	Priority    int    `json:"priority"      gorm:"not null"`
	InStock     bool   `json:"in_stock"      gorm:"default:true"`
	IsActive    bool   `json:"is_active"     gorm:"default:true"`

	Dishes []DishModel `json:"dishes,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }

func (c *CategoryModel) Visible() bool { return c.InStock && c.IsActive }
