package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// conditionChecker is a stateful rule evaluated once per activity message.
// Check returns nil when the rule does not fire; it never returns more than
// one event per message.
type conditionChecker interface {
	check(msg parse.ActivityMessage) *notify.Event
}

// HarvesterActivityHandler watches harvester challenge participation. It runs
// every parsed activity message through a fixed list of condition checkers
// and prepends one keepalive event whenever any activity was observed at all.
type HarvesterActivityHandler struct {
	parser    *parse.HarvesterActivityParser
	checkers  []conditionChecker
	observers []ActivityObserver
}

// NewHarvesterActivityHandler constructs the handler with its checkers in
// their fixed evaluation order. Observers, if any, see each message before
// the checkers do.
func NewHarvesterActivityHandler(observers ...ActivityObserver) *HarvesterActivityHandler {
	return &HarvesterActivityHandler{
		parser: parse.NewHarvesterActivityParser(),
		checkers: []conditionChecker{
			newTimeSinceLastFarmEvent(),
			newNonDecreasingPlots(),
			newQuickPlotSearchTime(),
			newFoundProofs(),
		},
		observers: observers,
	}
}

// Handle parses logs and evaluates every checker against every message, in
// message order then checker order. The result starts with a keepalive event
// when at least one message parsed; otherwise it is empty. Handle never
// mutates messages and every checker runs even if an earlier one fired.
func (h *HarvesterActivityHandler) Handle(logs string) []notify.Event {
	msgs := h.parser.Parse(logs)
	if len(msgs) == 0 {
		return nil
	}

	slog.Debug("harvester: parsed activity messages", "count", len(msgs))

	events := make([]notify.Event, 0, 1+len(msgs))
	events = append(events, notify.NewKeepalive(notify.ServiceHarvester))

	for _, msg := range msgs {
		for _, obs := range h.observers {
			obs.ObserveActivity(msg)
		}
		for _, c := range h.checkers {
			if ev := c.check(msg); ev != nil {
				events = append(events, *ev)
			}
		}
	}
	return events
}

// --- time since last farm event ---------------------------------------------

// Gap thresholds between consecutive farming events, in whole seconds.
// Challenges normally arrive every few seconds; the 30–60s band is common
// enough on the live network that it is only logged, not notified.
const (
	gapInfoSeconds    = 30
	gapWarningSeconds = 60
)

// timeSinceLastFarmEvent detects recovered stalls: it fires after activity
// resumes following an unusually long gap, reporting the elapsed time. A full
// stop never reaches this checker — that is caught upstream by the absence of
// keepalive events.
type timeSinceLastFarmEvent struct {
	last    time.Time
	hasLast bool
}

func newTimeSinceLastFarmEvent() *timeSinceLastFarmEvent {
	slog.Info("harvester: enabled check for farming event gaps")
	return &timeSinceLastFarmEvent{}
}

func (c *timeSinceLastFarmEvent) check(msg parse.ActivityMessage) *notify.Event {
	if !c.hasLast {
		c.last = msg.Timestamp
		c.hasLast = true
		return nil
	}

	// Whole seconds, truncated. A zero or negative delta (duplicate or
	// out-of-order timestamps) falls below both thresholds.
	elapsed := int64(msg.Timestamp.Sub(c.last) / time.Second)
	c.last = msg.Timestamp

	if elapsed > gapWarningSeconds {
		message := fmt.Sprintf(
			"Experiencing networking issues? Harvester did not participate in any "+
				"challenge for %d seconds. It's now working again.", elapsed)
		slog.Warn("harvester: farming event gap recovered", "seconds", elapsed)
		ev := notify.NewUserEvent(notify.PriorityNormal, notify.ServiceHarvester, message)
		return &ev
	}
	if elapsed > gapInfoSeconds {
		slog.Info("harvester: unusually long gap between farming events", "seconds", elapsed)
	}
	return nil
}

// --- non-decreasing plot count -----------------------------------------------

// nonDecreasingPlots watches the total plot count. Growth is expected and
// benign (low priority); a drop suggests a disconnected drive (high priority).
//
// After the comparison the checker tracks the current count, not a running
// maximum. A sustained lower count therefore alarms once instead of on every
// message, and any later increase — even a partial recovery — reports growth
// again. This is deliberate; do not change it to track the historical max.
type nonDecreasingPlots struct {
	lastPlots int
}

func newNonDecreasingPlots() *nonDecreasingPlots {
	slog.Info("harvester: enabled check for non-decreasing total plot count")
	return &nonDecreasingPlots{}
}

func (c *nonDecreasingPlots) check(msg parse.ActivityMessage) *notify.Event {
	var ev *notify.Event

	switch {
	case msg.TotalPlotsCount > c.lastPlots:
		slog.Info("harvester: detected new plots", "total_plots", msg.TotalPlotsCount)
		e := notify.NewUserEvent(notify.PriorityLow, notify.ServiceHarvester,
			fmt.Sprintf("The total plot count increased to %d.", msg.TotalPlotsCount))
		ev = &e

	case msg.TotalPlotsCount < c.lastPlots:
		message := fmt.Sprintf("Disconnected HDD? The total plot count decreased from %d to %d.",
			c.lastPlots, msg.TotalPlotsCount)
		slog.Warn("harvester: total plot count decreased",
			"previous", c.lastPlots, "current", msg.TotalPlotsCount)
		e := notify.NewUserEvent(notify.PriorityHigh, notify.ServiceHarvester, message)
		ev = &e
	}

	c.lastPlots = msg.TotalPlotsCount
	return ev
}

// --- plot search time ---------------------------------------------------------

// searchTimeWarningSeconds is the early-warning margin under the ~30s deadline
// for answering a challenge.
const searchTimeWarningSeconds = 25

// quickPlotSearchTime is stateless: it fires whenever a single storage search
// took longer than the warning threshold.
type quickPlotSearchTime struct{}

func newQuickPlotSearchTime() *quickPlotSearchTime {
	slog.Info("harvester: enabled check for challenge response time")
	return &quickPlotSearchTime{}
}

func (c *quickPlotSearchTime) check(msg parse.ActivityMessage) *notify.Event {
	if msg.SearchTimeSeconds > searchTimeWarningSeconds {
		message := fmt.Sprintf("Seeking plots took too long: %v seconds!", msg.SearchTimeSeconds)
		slog.Warn("harvester: plot search too slow", "seconds", msg.SearchTimeSeconds)
		ev := notify.NewUserEvent(notify.PriorityNormal, notify.ServiceHarvester, message)
		return &ev
	}
	return nil
}

// --- found proofs -------------------------------------------------------------

// foundProofs is stateless: it reports any challenge that produced proofs.
// A positive outcome, hence low priority.
type foundProofs struct{}

func newFoundProofs() *foundProofs {
	slog.Info("harvester: enabled check for found proofs")
	return &foundProofs{}
}

func (c *foundProofs) check(msg parse.ActivityMessage) *notify.Event {
	if msg.FoundProofsCount > 0 {
		message := fmt.Sprintf("Found %d proof(s)!", msg.FoundProofsCount)
		slog.Info("harvester: found proofs", "count", msg.FoundProofsCount)
		ev := notify.NewUserEvent(notify.PriorityLow, notify.ServiceHarvester, message)
		return &ev
	}
	return nil
}
