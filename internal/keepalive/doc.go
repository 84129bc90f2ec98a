// Package keepalive implements the liveness watchdog. Log handlers emit a
// keepalive event whenever a subsystem produced any parseable activity; the
// Monitor records those signals and raises one high-priority notification per
// subsystem when the signals stop arriving. The per-checker gap rules in the
// handlers catch recovered stalls — this monitor catches full stops.
package keepalive
