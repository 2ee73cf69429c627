package models

// AddonGroupModel is a named, min/max-bounded set of selectable extras
// attachable to dishes ("Choose your sauce", min 0 max 2).
type AddonGroupModel struct {
	Base
	Name         string `json:"name"          gorm:"not null;uniqueIndex"`
	MinSelection int    `json:"min_selection" gorm:"default:0"`
	MaxSelection int    `json:"max_selection" gorm:"default:1"`
	Priority     int    `json:"priority"      gorm:"not null"`

	Items []AddonItemModel `json:"items,omitempty" gorm:"foreignKey:GroupID"`
}

func (AddonGroupModel) TableName() string { return "addon_groups" }

// AddonItemModel is one selectable extra. Priority is dense within the group.
type AddonItemModel struct {
	Base
	GroupID  string `json:"group_id" gorm:"type:char(36);not null;index"`
	Name     string `json:"name"     gorm:"not null"`
	Price    int    `json:"price"    gorm:"default:0"`
	Priority int    `json:"priority" gorm:"not null"`
	InStock  bool   `json:"in_stock" gorm:"default:true"`
}

func (AddonItemModel) TableName() string { return "addon_items" }
