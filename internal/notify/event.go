package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes liveness signals from user-facing notifications.
type Kind string

const (
	// KindKeepalive marks a liveness signal. Keepalive events carry an empty
	// message and are consumed by the keepalive monitor, not by user sinks.
	KindKeepalive Kind = "keepalive"

	// KindUser marks a notification intended for the farmer.
	KindUser Kind = "user"
)

// Priority orders events for downstream routing: low < normal < high.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// MarshalJSON encodes the priority as its string name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority converts a config string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	default:
		return 0, fmt.Errorf("unknown priority %q: want low|normal|high", s)
	}
}

// Service identifies the monitored subsystem an event originated from.
type Service string

const (
	ServiceHarvester  Service = "harvester"
	ServiceDailyStats Service = "daily_stats"
)

// Event is a single immutable notification produced by a log handler or
// background monitor.
type Event struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Priority Priority  `json:"priority"`
	Service  Service   `json:"service"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// NewKeepalive returns a liveness event for the given service.
// Keepalive events always carry normal priority and an empty message.
func NewKeepalive(svc Service) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     KindKeepalive,
		Priority: PriorityNormal,
		Service:  svc,
		Time:     time.Now().UTC(),
	}
}

// NewUserEvent returns a user-facing event with the given priority and message.
func NewUserEvent(p Priority, svc Service, message string) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     KindUser,
		Priority: p,
		Service:  svc,
		Message:  message,
		Time:     time.Now().UTC(),
	}
}
