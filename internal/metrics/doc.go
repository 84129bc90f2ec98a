// Package metrics exposes farmsentry's own observability: counters for parsed
// activity and emitted events, plus gauges and histograms for farm health
// (plot count, search time). The collector registers on a private registry
// served at /metrics.
package metrics
