package models

// DishType classifies a dish for dietary badges.
type DishType string

const (
	DishVeg    DishType = "veg"
	DishNonVeg DishType = "non_veg"
	DishEgg    DishType = "egg"
	DishLiquor DishType = "liquor"
)

// DishModel is a single sellable item. Priority is dense within the owning
// category. Tags, Upsells and Gallery are bounded selections (2 / 4 / 3).
type DishModel struct {
	Base
	Name        string      `json:"name"         gorm:"not null;index"`
	Description string      `json:"description"  gorm:"type:text"`
	CategoryID  string      `json:"category_id"  gorm:"type:char(36);not null;index"`
	Priority    int         `json:"priority"     gorm:"not null"`
	Price       int         `json:"price"        gorm:"not null"` // minor currency units
	Type        DishType    `json:"type"         gorm:"type:varchar(16);default:'veg'"`
	ImageURL    string      `json:"image_url"`
	Tags        StringArray `json:"tags"         gorm:"type:longtext;serializer:json"`
	Upsells     StringArray `json:"upsells"      gorm:"type:longtext;serializer:json"`
	Gallery     StringArray `json:"gallery"      gorm:"type:longtext;serializer:json"`
	AddonGroups StringArray `json:"addon_groups" gorm:"type:longtext;serializer:json"`

	Stocks []DishStockModel `json:"stocks,omitempty" gorm:"foreignKey:DishID"`
}

func (DishModel) TableName() string { return "dishes" }

// DishStockModel is the per-outlet stock flag: exactly one authoritative
// value per (dish, outlet) pair.
type DishStockModel struct {
	Base
	DishID     string `json:"dish_id"     gorm:"type:char(36);not null;index:idx_dish_outlet,unique"`
	OutletCode string `json:"outlet_code" gorm:"type:varchar(32);not null;index:idx_dish_outlet,unique"`
	InStock    bool   `json:"in_stock"    gorm:"default:true"`
}

func (DishStockModel) TableName() string { return "dish_stocks" }
