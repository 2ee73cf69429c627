package muncho

import (
	"time"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"gorm.io/gorm"
)

// GormSink persists telemetry entries to the upstream_logs table.
// Writes are fire-and-forget so a slow database never delays a mutation.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink { return &GormSink{db: db} }

func (s *GormSink) Record(e Entry) {
	go func() {
		_ = s.db.Create(&models.UpstreamLogModel{
			Method:     e.Method,
			Path:       e.Path,
			StatusCode: e.StatusCode,
			OK:         e.OK,
			Message:    e.Message,
			Attempts:   e.Attempts,
			Duration:   e.Duration,
			At:         e.At,
		}).Error
	}()
}

// Prune deletes telemetry rows older than the retention window.
func (s *GormSink) Prune(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	return s.db.Unscoped().Where("at < ?", cutoff).Delete(&models.UpstreamLogModel{}).Error
}
