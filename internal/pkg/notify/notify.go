// Package notify surfaces mutation outcomes to the dashboard as transient
// notifications ("toasts"). Presentation is decoupled from control flow:
// mutation code returns plain results and the hub is just a subscriber.
package notify

import (
	"context"
	"encoding/json"
	"time"

	pkgredis "github.com/kalpit-muncho/dashboard-core/internal/pkg/redis"
	"go.uber.org/zap"
)

// Level is the toast severity.
type Level string

const (
	LevelPending Level = "pending"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Event is one notification.
type Event struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message,omitempty"`
	Entity  string    `json:"entity,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier receives mutation outcome events.
type Notifier interface {
	Notify(Event)
}

// Channel is the Redis pub/sub channel the SPA gateway subscribes to.
const Channel = "dash:notifications"

// Hub logs every event and republishes it on Redis for connected dashboards.
type Hub struct {
	rc     *pkgredis.Client
	logger *zap.Logger
}

func NewHub(rc *pkgredis.Client, logger *zap.Logger) *Hub {
	return &Hub{rc: rc, logger: logger}
}

func (h *Hub) Notify(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	switch ev.Level {
	case LevelError:
		h.logger.Warn("toast", zap.String("title", ev.Title), zap.String("message", ev.Message), zap.String("entity", ev.Entity))
	default:
		h.logger.Info("toast", zap.String("level", string(ev.Level)), zap.String("title", ev.Title), zap.String("entity", ev.Entity))
	}

	if h.rc == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = h.rc.Publish(ctx, Channel, payload)
}

// Discard swallows events; used in tests and one-off tooling.
type Discard struct{}

func (Discard) Notify(Event) {}
