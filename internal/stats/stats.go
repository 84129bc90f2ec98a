package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// Accumulator aggregates activity messages between summary ticks. It
// implements handlers.ActivityObserver and is safe for concurrent use —
// Observe runs on the log processing loop while Run ticks independently.
type Accumulator struct {
	interval time.Duration
	emit     func(notify.Event)

	mu            sync.Mutex
	challenges    int
	proofs        int
	eligiblePlots int
	maxSearchTime float64
	lastPlots     int
}

// New creates an Accumulator that emits one summary event per interval.
func New(interval time.Duration, emit func(notify.Event)) *Accumulator {
	return &Accumulator{interval: interval, emit: emit}
}

// ObserveActivity folds one activity message into the running counters.
func (a *Accumulator) ObserveActivity(msg parse.ActivityMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.challenges++
	a.proofs += msg.FoundProofsCount
	a.eligiblePlots += msg.EligiblePlotsCount
	if msg.SearchTimeSeconds > a.maxSearchTime {
		a.maxSearchTime = msg.SearchTimeSeconds
	}
	a.lastPlots = msg.TotalPlotsCount
}

// Run emits a summary every interval until ctx is cancelled. Periods without
// any observed activity produce no event — the keepalive monitor already
// covers silence.
func (a *Accumulator) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()

	slog.Info("stats: summary loop running", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ev, ok := a.Flush(); ok {
				a.emit(ev)
			}
		}
	}
}

// Flush builds the summary event for the current period and resets the
// counters. The second return value is false when nothing was observed.
func (a *Accumulator) Flush() (notify.Event, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.challenges == 0 {
		return notify.Event{}, false
	}

	message := fmt.Sprintf(
		"Summary: %d challenges answered, %d proof(s) found, %d plots eligible in total, "+
			"farming %d plots, slowest search %.2f s.",
		a.challenges, a.proofs, a.eligiblePlots, a.lastPlots, a.maxSearchTime)
	ev := notify.NewUserEvent(notify.PriorityLow, notify.ServiceDailyStats, message)

	a.challenges = 0
	a.proofs = 0
	a.eligiblePlots = 0
	a.maxSearchTime = 0

	return ev, true
}
