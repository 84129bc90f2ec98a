package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/farmsentry/farmsentry/internal/notify"
)

// Monitor tracks the last keepalive signal per service and emits one
// high-priority offline notification when a service stays silent longer than
// the threshold. The alarm re-arms as soon as the service signals again.
//
// Monitor is safe for concurrent use: Signal is called from the log
// processing loop while the check loop runs on its own ticker.
type Monitor struct {
	threshold time.Duration
	emit      func(notify.Event)
	now       func() time.Time // injectable for deterministic tests

	mu       sync.Mutex
	lastSeen map[notify.Service]time.Time
	alerted  map[notify.Service]bool
}

// New creates a Monitor. Emitted events are handed to emit, which must be
// non-nil and must not block for long — it runs on the check loop.
func New(threshold time.Duration, emit func(notify.Event)) *Monitor {
	return &Monitor{
		threshold: threshold,
		emit:      emit,
		now:       time.Now,
		lastSeen:  make(map[notify.Service]time.Time),
		alerted:   make(map[notify.Service]bool),
	}
}

// Signal records a keepalive for svc and re-arms its offline alarm.
func (m *Monitor) Signal(svc notify.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSeen[svc] = m.now()
	if m.alerted[svc] {
		slog.Info("keepalive: service back online", "service", string(svc))
		m.alerted[svc] = false
	}
}

// Run starts the check loop. It ticks at half the threshold (minimum 1s) so
// an outage is reported promptly. Run blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	interval := m.threshold / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	slog.Info("keepalive: monitor running", "threshold", m.threshold)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			for _, ev := range m.check(now) {
				m.emit(ev)
			}
		}
	}
}

// check collects offline notifications for every service whose last signal is
// older than the threshold and not yet alerted. Run emits the returned events
// outside the lock.
func (m *Monitor) check(now time.Time) []notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []notify.Event
	for svc, seen := range m.lastSeen {
		if m.alerted[svc] {
			continue
		}
		silent := now.Sub(seen)
		if silent <= m.threshold {
			continue
		}

		m.alerted[svc] = true
		message := fmt.Sprintf("Your %s appears to be offline! No events for the past %d seconds.",
			svc, int64(silent/time.Second))
		slog.Warn("keepalive: service offline",
			"service", string(svc),
			"silent_seconds", int64(silent/time.Second),
		)
		out = append(out, notify.NewUserEvent(notify.PriorityHigh, svc, message))
	}
	return out
}
