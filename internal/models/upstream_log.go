package models

import "time"

// UpstreamLogModel records one request/response pair against the platform
// API. Every call is logged, success and failure alike; failures carry the
// status code and server message.
type UpstreamLogModel struct {
	Base
	Method     string        `json:"method"      gorm:"type:varchar(8);not null"`
	Path       string        `json:"path"        gorm:"type:varchar(255);not null;index"`
	StatusCode int           `json:"status_code"`
	OK         bool          `json:"ok"          gorm:"index"`
	Message    string        `json:"message"     gorm:"type:text"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	At         time.Time     `json:"at"          gorm:"index"`
}

func (UpstreamLogModel) TableName() string { return "upstream_logs" }
