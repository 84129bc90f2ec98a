// Package stats accumulates farm activity into a periodic summary
// notification: challenges answered, proofs found, current plot count, and
// the slowest plot search of the period. One low-priority event is emitted
// per interval (default daily) and the counters reset.
package stats
