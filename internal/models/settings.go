package models

// SettingsModel is the singleton merchant settings row.
// UniversalUpsells holds at most ten dish ids recommended on every screen.
type SettingsModel struct {
	Base
	OutletCodes      StringArray `json:"outlet_codes"      gorm:"type:longtext;serializer:json"`
	UniversalUpsells StringArray `json:"universal_upsells" gorm:"type:longtext;serializer:json"`
}

func (SettingsModel) TableName() string { return "settings" }
