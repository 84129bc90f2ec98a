// Package handlers implements the per-subsystem log handlers that turn raw
// log text into notification events.
//
// Each handler owns a parser and a fixed, ordered list of condition checkers.
// A checker is a stateful rule: it observes one activity message per call and
// returns at most one event. Checker state (last-seen timestamp, last plot
// count) lives for the lifetime of the handler, which is what makes
// time-delta and monotonicity rules possible across batches.
//
// A handler instance is not safe for concurrent Handle calls; the log source
// serializes batches, so there is at most one in-flight call per handler.
package handlers
