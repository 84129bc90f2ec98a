package handlers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// msgAt builds a minimal activity message observed at t.
func msgAt(t time.Time, plots int, searchTime float64, proofs int) parse.ActivityMessage {
	return parse.ActivityMessage{
		Timestamp:          t,
		EligiblePlotsCount: 1,
		ChallengeHash:      "68defa4bd5",
		FoundProofsCount:   proofs,
		SearchTimeSeconds:  searchTime,
		TotalPlotsCount:    plots,
	}
}

// logLine renders one harvester activity log line as the node writes it.
func logLine(ts time.Time, proofs int, searchTime string, plots int) string {
	return fmt.Sprintf(
		"%s harvester chia.harvester.harvester: INFO     1 plots were eligible for farming 68defa4bd5... "+
			"Found %d proofs. Time: %s s. Total %d plots",
		ts.Format("2006-01-02T15:04:05.000"), proofs, searchTime, plots)
}

// --- handler orchestration ---------------------------------------------------

func TestHandle_NoActivity_ReturnsNoEvents(t *testing.T) {
	h := NewHarvesterActivityHandler()

	for _, logs := range []string{"", "\n", "unrelated log line\nanother one\n"} {
		if events := h.Handle(logs); len(events) != 0 {
			t.Errorf("Handle(%q) returned %d events, want 0", logs, len(events))
		}
	}
}

func TestHandle_Activity_PrependsKeepalive(t *testing.T) {
	h := NewHarvesterActivityHandler()

	events := h.Handle(logLine(baseTime, 0, "0.5", 100) + "\n")
	if len(events) == 0 {
		t.Fatal("Handle returned no events for parseable activity")
	}

	first := events[0]
	if first.Kind != notify.KindKeepalive {
		t.Errorf("first event Kind = %q, want %q", first.Kind, notify.KindKeepalive)
	}
	if first.Priority != notify.PriorityNormal {
		t.Errorf("keepalive Priority = %q, want normal", first.Priority)
	}
	if first.Message != "" {
		t.Errorf("keepalive Message = %q, want empty", first.Message)
	}
	if first.Service != notify.ServiceHarvester {
		t.Errorf("keepalive Service = %q, want harvester", first.Service)
	}
}

func TestHandle_EndToEnd_QuietBatch(t *testing.T) {
	h := NewHarvesterActivityHandler()

	// Prime the checkers so the batch under test starts from a settled state:
	// plot count baseline 100, last farming event 10s before the batch.
	if events := h.Handle(logLine(baseTime.Add(-10*time.Second), 0, "0.5", 100) + "\n"); len(events) != 2 {
		t.Fatalf("priming batch produced %d events, want 2 (keepalive + plot baseline)", len(events))
	}

	// Two messages 40s apart: the gap is in the silent informational band,
	// plot count unchanged, one proof found on the second message.
	batch := logLine(baseTime, 0, "5", 100) + "\n" +
		logLine(baseTime.Add(40*time.Second), 1, "5", 100) + "\n"

	events := h.Handle(batch)
	if len(events) != 2 {
		for _, ev := range events {
			t.Logf("event: kind=%s priority=%s message=%q", ev.Kind, ev.Priority, ev.Message)
		}
		t.Fatalf("Handle returned %d events, want 2 (keepalive + found proofs)", len(events))
	}
	if events[0].Kind != notify.KindKeepalive {
		t.Errorf("events[0].Kind = %q, want keepalive", events[0].Kind)
	}
	if events[1].Priority != notify.PriorityLow {
		t.Errorf("found-proofs Priority = %q, want low", events[1].Priority)
	}
	if !strings.Contains(events[1].Message, "1 proof") {
		t.Errorf("found-proofs Message = %q, want mention of 1 proof", events[1].Message)
	}
}

func TestHandle_EveryCheckerRunsOnOneMessage(t *testing.T) {
	h := NewHarvesterActivityHandler()

	// A single message that trips three checkers at once: first-seen plot
	// count (growth), slow search, and proofs found. No checker may be
	// skipped because an earlier one already fired.
	events := h.Handle(logLine(baseTime, 2, "26.5", 100) + "\n")
	if len(events) != 4 {
		for _, ev := range events {
			t.Logf("event: kind=%s priority=%s message=%q", ev.Kind, ev.Priority, ev.Message)
		}
		t.Fatalf("Handle returned %d events, want 4 (keepalive + three checkers)", len(events))
	}

	// Events follow checker construction order after the keepalive.
	if events[0].Kind != notify.KindKeepalive {
		t.Errorf("events[0].Kind = %q, want keepalive", events[0].Kind)
	}
	if !strings.Contains(events[1].Message, "increased to 100") || events[1].Priority != notify.PriorityLow {
		t.Errorf("events[1] = %q (%s), want plot increase at low", events[1].Message, events[1].Priority)
	}
	if !strings.Contains(events[2].Message, "took too long") || events[2].Priority != notify.PriorityNormal {
		t.Errorf("events[2] = %q (%s), want slow search at normal", events[2].Message, events[2].Priority)
	}
	if !strings.Contains(events[3].Message, "2 proof") || events[3].Priority != notify.PriorityLow {
		t.Errorf("events[3] = %q (%s), want found proofs at low", events[3].Message, events[3].Priority)
	}
}

func TestHandle_ObserversSeeEveryMessage(t *testing.T) {
	var seen []parse.ActivityMessage
	h := NewHarvesterActivityHandler(observerFunc(func(msg parse.ActivityMessage) {
		seen = append(seen, msg)
	}))

	batch := logLine(baseTime, 0, "0.5", 100) + "\n" +
		logLine(baseTime.Add(5*time.Second), 2, "0.5", 100) + "\n"
	h.Handle(batch)

	if len(seen) != 2 {
		t.Fatalf("observer saw %d messages, want 2", len(seen))
	}
	if seen[1].FoundProofsCount != 2 {
		t.Errorf("second observed message FoundProofsCount = %d, want 2", seen[1].FoundProofsCount)
	}
}

// observerFunc adapts a function to the ActivityObserver interface.
type observerFunc func(parse.ActivityMessage)

func (f observerFunc) ObserveActivity(msg parse.ActivityMessage) { f(msg) }

// --- time since last farm event ----------------------------------------------

func TestTimeSinceLastFarmEvent_FirstCallNeverFires(t *testing.T) {
	c := newTimeSinceLastFarmEvent()
	if ev := c.check(msgAt(baseTime, 100, 0.5, 0)); ev != nil {
		t.Errorf("first check fired: %q", ev.Message)
	}
}

func TestTimeSinceLastFarmEvent_Boundaries(t *testing.T) {
	cases := []struct {
		name     string
		gap      time.Duration
		wantFire bool
	}{
		{"5s gap", 5 * time.Second, false},
		{"30s boundary", 30 * time.Second, false},
		{"31s info band", 31 * time.Second, false},
		{"60s boundary", 60 * time.Second, false},
		{"61s gap", 61 * time.Second, true},
		{"60.9s truncates to 60", 60*time.Second + 900*time.Millisecond, false},
		{"zero gap", 0, false},
		{"negative gap", -10 * time.Second, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTimeSinceLastFarmEvent()
			c.check(msgAt(baseTime, 100, 0.5, 0))

			ev := c.check(msgAt(baseTime.Add(tc.gap), 100, 0.5, 0))
			if tc.wantFire && ev == nil {
				t.Fatalf("gap %v did not fire", tc.gap)
			}
			if !tc.wantFire && ev != nil {
				t.Fatalf("gap %v fired: %q", tc.gap, ev.Message)
			}
			if ev != nil && ev.Priority != notify.PriorityNormal {
				t.Errorf("Priority = %q, want normal", ev.Priority)
			}
		})
	}
}

func TestTimeSinceLastFarmEvent_ReportsElapsedSeconds(t *testing.T) {
	c := newTimeSinceLastFarmEvent()
	c.check(msgAt(baseTime, 100, 0.5, 0))

	ev := c.check(msgAt(baseTime.Add(61*time.Second), 100, 0.5, 0))
	if ev == nil {
		t.Fatal("61s gap did not fire")
	}
	if !strings.Contains(ev.Message, "61 seconds") {
		t.Errorf("Message = %q, want mention of 61 seconds", ev.Message)
	}
}

func TestTimeSinceLastFarmEvent_BaselineAdvancesOnEveryCall(t *testing.T) {
	c := newTimeSinceLastFarmEvent()
	c.check(msgAt(baseTime, 100, 0.5, 0))

	if ev := c.check(msgAt(baseTime.Add(61*time.Second), 100, 0.5, 0)); ev == nil {
		t.Fatal("61s gap did not fire")
	}
	// The baseline moved to the recovery message: a 5s follow-up is quiet.
	if ev := c.check(msgAt(baseTime.Add(66*time.Second), 100, 0.5, 0)); ev != nil {
		t.Errorf("5s follow-up fired: %q", ev.Message)
	}
}

// --- non-decreasing plot count -----------------------------------------------

func TestNonDecreasingPlots_Sequence(t *testing.T) {
	c := newNonDecreasingPlots()

	type fired struct {
		priority notify.Priority
		contains string
	}
	steps := []struct {
		plots int
		want  *fired
	}{
		{10, &fired{notify.PriorityLow, "increased to 10"}},
		{15, &fired{notify.PriorityLow, "increased to 15"}},
		{12, &fired{notify.PriorityHigh, "decreased from 15 to 12"}},
		{15, &fired{notify.PriorityLow, "increased to 15"}},
		{15, nil},
	}

	for i, step := range steps {
		ev := c.check(msgAt(baseTime.Add(time.Duration(i)*time.Second), step.plots, 0.5, 0))
		switch {
		case step.want == nil && ev != nil:
			t.Errorf("step %d (plots=%d) fired: %q", i, step.plots, ev.Message)
		case step.want != nil && ev == nil:
			t.Errorf("step %d (plots=%d) did not fire, want %q", i, step.plots, step.want.contains)
		case step.want != nil:
			if ev.Priority != step.want.priority {
				t.Errorf("step %d Priority = %q, want %q", i, ev.Priority, step.want.priority)
			}
			if !strings.Contains(ev.Message, step.want.contains) {
				t.Errorf("step %d Message = %q, want substring %q", i, ev.Message, step.want.contains)
			}
		}
	}
}

func TestNonDecreasingPlots_SustainedDropAlarmsOnce(t *testing.T) {
	c := newNonDecreasingPlots()
	c.check(msgAt(baseTime, 100, 0.5, 0))

	ev := c.check(msgAt(baseTime.Add(time.Second), 90, 0.5, 0))
	if ev == nil || ev.Priority != notify.PriorityHigh {
		t.Fatal("drop to 90 did not fire a high-priority event")
	}

	// The checker now tracks 90: the sustained lower count stays quiet, and a
	// partial recovery reports growth rather than re-raising the old maximum.
	if ev := c.check(msgAt(baseTime.Add(2*time.Second), 90, 0.5, 0)); ev != nil {
		t.Errorf("sustained count 90 fired: %q", ev.Message)
	}
	ev = c.check(msgAt(baseTime.Add(3*time.Second), 95, 0.5, 0))
	if ev == nil || ev.Priority != notify.PriorityLow {
		t.Fatal("partial recovery to 95 did not fire a low-priority event")
	}
}

// --- plot search time ----------------------------------------------------------

func TestQuickPlotSearchTime_Boundary(t *testing.T) {
	c := newQuickPlotSearchTime()

	if ev := c.check(msgAt(baseTime, 100, 25, 0)); ev != nil {
		t.Errorf("search time 25 fired: %q", ev.Message)
	}

	ev := c.check(msgAt(baseTime, 100, 25.01, 0))
	if ev == nil {
		t.Fatal("search time 25.01 did not fire")
	}
	if ev.Priority != notify.PriorityNormal {
		t.Errorf("Priority = %q, want normal", ev.Priority)
	}
	if !strings.Contains(ev.Message, "25.01") {
		t.Errorf("Message = %q, want the search time", ev.Message)
	}
}

// --- found proofs --------------------------------------------------------------

func TestFoundProofs(t *testing.T) {
	c := newFoundProofs()

	if ev := c.check(msgAt(baseTime, 100, 0.5, 0)); ev != nil {
		t.Errorf("zero proofs fired: %q", ev.Message)
	}

	ev := c.check(msgAt(baseTime, 100, 0.5, 2))
	if ev == nil {
		t.Fatal("two proofs did not fire")
	}
	if ev.Priority != notify.PriorityLow {
		t.Errorf("Priority = %q, want low", ev.Priority)
	}
	if ev.Message != "Found 2 proof(s)!" {
		t.Errorf("Message = %q", ev.Message)
	}
}
