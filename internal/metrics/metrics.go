package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// Collector holds all farmsentry metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	messagesTotal prometheus.Counter
	proofsTotal   prometheus.Counter
	totalPlots    prometheus.Gauge
	eligiblePlots prometheus.Histogram
	searchTime    prometheus.Histogram
}

// NewCollector constructs a collector with its metrics registered.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farmsentry",
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Total notification events produced, by kind, priority and service.",
		}, []string{"kind", "priority", "service"}),
		messagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farmsentry",
			Subsystem: "harvester",
			Name:      "activity_messages_total",
			Help:      "Total activity messages parsed from the log.",
		}),
		proofsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farmsentry",
			Subsystem: "harvester",
			Name:      "proofs_found_total",
			Help:      "Total proofs found across all observed challenges.",
		}),
		totalPlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "farmsentry",
			Subsystem: "harvester",
			Name:      "total_plots",
			Help:      "Total plots currently being farmed, as of the last activity message.",
		}),
		eligiblePlots: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "farmsentry",
			Subsystem: "harvester",
			Name:      "eligible_plots",
			Help:      "Distribution of plots passing the challenge filter per attempt.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "farmsentry",
			Subsystem: "harvester",
			Name:      "search_time_seconds",
			Help:      "Distribution of plot search times per challenge.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 30},
		}),
	}

	for _, col := range []prometheus.Collector{
		c.eventsTotal, c.messagesTotal, c.proofsTotal,
		c.totalPlots, c.eligiblePlots, c.searchTime,
	} {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns the HTTP handler serving the registry in exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveActivity records farm health data from one parsed activity message.
func (c *Collector) ObserveActivity(msg parse.ActivityMessage) {
	c.messagesTotal.Inc()
	c.proofsTotal.Add(float64(msg.FoundProofsCount))
	c.totalPlots.Set(float64(msg.TotalPlotsCount))
	c.eligiblePlots.Observe(float64(msg.EligiblePlotsCount))
	c.searchTime.Observe(msg.SearchTimeSeconds)
}

// RecordEvent counts one produced notification event.
func (c *Collector) RecordEvent(e notify.Event) {
	c.eventsTotal.WithLabelValues(string(e.Kind), e.Priority.String(), string(e.Service)).Inc()
}
