package keepalive

import (
	"strings"
	"testing"
	"time"

	"github.com/farmsentry/farmsentry/internal/notify"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const testThreshold = 60 * time.Second

// newTestMonitor returns a monitor with a pinned clock. The tests drive
// check directly, so emitted events are read from its return value.
func newTestMonitor() *Monitor {
	m := New(testThreshold, func(notify.Event) {})
	m.now = func() time.Time { return baseTime }
	return m
}

func TestMonitor_QuietWithinThreshold(t *testing.T) {
	m := newTestMonitor()
	m.Signal(notify.ServiceHarvester)

	if events := m.check(baseTime.Add(testThreshold)); len(events) != 0 {
		t.Errorf("check at the threshold boundary fired %d events, want 0", len(events))
	}
}

func TestMonitor_FiresOnceAfterThreshold(t *testing.T) {
	m := newTestMonitor()
	m.Signal(notify.ServiceHarvester)

	events := m.check(baseTime.Add(testThreshold + time.Second))
	if len(events) != 1 {
		t.Fatalf("check fired %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Priority != notify.PriorityHigh {
		t.Errorf("Priority = %q, want high", ev.Priority)
	}
	if ev.Service != notify.ServiceHarvester {
		t.Errorf("Service = %q, want harvester", ev.Service)
	}
	if !strings.Contains(ev.Message, "offline") {
		t.Errorf("Message = %q, want mention of offline", ev.Message)
	}

	// Still silent: the alarm must not repeat.
	if events := m.check(baseTime.Add(10 * time.Minute)); len(events) != 0 {
		t.Errorf("second check fired %d events, want 0", len(events))
	}
}

func TestMonitor_RearmsAfterSignal(t *testing.T) {
	m := newTestMonitor()
	m.Signal(notify.ServiceHarvester)

	if events := m.check(baseTime.Add(2 * testThreshold)); len(events) != 1 {
		t.Fatalf("first outage fired %d events, want 1", len(events))
	}

	// Service comes back, then goes silent again — a fresh alarm fires.
	m.now = func() time.Time { return baseTime.Add(3 * testThreshold) }
	m.Signal(notify.ServiceHarvester)

	if events := m.check(baseTime.Add(5 * testThreshold)); len(events) != 1 {
		t.Errorf("second outage fired %d events, want 1", len(events))
	}
}

func TestMonitor_UnknownServiceStaysQuiet(t *testing.T) {
	m := newTestMonitor()

	// No Signal was ever recorded: there is no baseline to alarm against.
	if events := m.check(baseTime.Add(time.Hour)); len(events) != 0 {
		t.Errorf("check without signals fired %d events, want 0", len(events))
	}
}
