// Package notify defines the notification event model and delivers user-facing
// events to configured sinks (Slack/Teams/generic webhooks, or a user script).
//
// Events come in two kinds: keepalive events signal that a monitored subsystem
// is alive and producing parseable activity, and user events carry a
// human-readable message at low, normal, or high priority. The Manager fans
// user events out to every sink; keepalive events never reach user sinks —
// the caller routes them to the keepalive monitor instead.
package notify
