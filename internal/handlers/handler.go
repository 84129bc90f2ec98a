package handlers

import (
	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// LogHandler consumes a batch of raw log text and returns the notable events
// it produced. An empty result is valid and common; implementations never
// return an error — unparseable input simply yields no events.
type LogHandler interface {
	Handle(logs string) []notify.Event
}

// ActivityObserver is an optional per-message tap. Observers see every parsed
// activity message before the condition checkers run; they must not retain or
// mutate the message. Used for metrics and the daily summary accumulator.
type ActivityObserver interface {
	ObserveActivity(msg parse.ActivityMessage)
}
