package notify

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/farmsentry/farmsentry/internal/config"
)

// sendTimeout bounds a single delivery attempt, webhook or script.
const sendTimeout = 10 * time.Second

// Sink delivers one user-facing event to an external destination.
type Sink interface {
	Name() string
	Send(e Event) error
}

// Manager fans user events out to every configured sink. Delivery failures
// are logged, never propagated — one misbehaving sink must not block the
// monitoring loop or the other sinks.
type Manager struct {
	sinks []Sink
	min   Priority
}

// NewManager builds a Manager and its sinks from the notify configuration.
// A Manager with no sinks is valid — Deliver becomes a log-only no-op.
func NewManager(cfg config.NotifyConfig) *Manager {
	min, err := ParsePriority(cfg.MinPriority)
	if err != nil {
		// Load validated this; an empty value can only appear in tests.
		min = PriorityLow
	}

	m := &Manager{min: min}
	client := &http.Client{Timeout: sendTimeout}
	for _, target := range cfg.Webhooks {
		m.sinks = append(m.sinks, &webhookSink{target: target, client: client})
	}
	if cfg.ScriptPath != "" {
		m.sinks = append(m.sinks, &scriptSink{path: cfg.ScriptPath})
	}

	slog.Info("notify: manager ready", "sinks", len(m.sinks), "min_priority", min.String())
	return m
}

// Deliver sends e to every sink. Keepalive events and events below the
// configured minimum priority are dropped here; the caller routes keepalives
// to the liveness monitor before delivery.
func (m *Manager) Deliver(e Event) {
	if e.Kind != KindUser {
		return
	}
	if e.Priority < m.min {
		slog.Debug("notify: event below minimum priority, not delivered",
			"priority", e.Priority.String(), "service", string(e.Service))
		return
	}

	for _, s := range m.sinks {
		if err := s.Send(e); err != nil {
			slog.Error("notify: delivery failed",
				"sink", s.Name(),
				"service", string(e.Service),
				"err", err,
			)
			continue
		}
		slog.Debug("notify: delivered",
			"sink", s.Name(),
			"priority", e.Priority.String(),
		)
	}
}

// SinkCount returns the number of configured sinks.
func (m *Manager) SinkCount() int {
	return len(m.sinks)
}
