package models

// TableModel is a physical dining table. Priority is dense within the
// section partition so tables stay in floor order per section.
type TableModel struct {
	Base
	Number   int    `json:"number"   gorm:"not null;index:idx_table_section_number,unique"`
	Section  string `json:"section"  gorm:"type:varchar(64);not null;index;index:idx_table_section_number,unique"`
	Capacity int    `json:"capacity" gorm:"default:2"`
	QRSlug   string `json:"qr_slug"  gorm:"uniqueIndex;not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
	Priority int    `json:"priority" gorm:"not null"`
}

func (TableModel) TableName() string { return "tables" }
