package models

// MenuGroupModel is a top-level menu tab ("Breakfast", "Drinks", ...).
// Priority is dense and unique across all groups of the restaurant; the
// effective visibility of a group is InStock AND IsActive.
type MenuGroupModel struct {
	Base
	Name     string `json:"name"      gorm:"uniqueIndex;not null"`
	Priority int    `json:"priority"  gorm:"not null;index"`
	InStock  bool   `json:"in_stock"  gorm:"default:true"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	Categories []CategoryModel `json:"categories,omitempty" gorm:"foreignKey:MenuGroupID"`
}

func (MenuGroupModel) TableName() string { return "menu_groups" }

// Visible reports whether the group reads as "in stock" on the dashboard.
// IsActive is owned by the enable/disable flow, not the stock toggle.
func (m *MenuGroupModel) Visible() bool { return m.InStock && m.IsActive }
