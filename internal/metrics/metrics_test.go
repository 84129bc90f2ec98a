package metrics

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/farmsentry/farmsentry/internal/notify"
	"github.com/farmsentry/farmsentry/internal/parse"
)

// scrape serves the collector's handler once and decodes the exposition.
func scrape(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rec.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}
	return mfs
}

func counterValue(mf *dto.MetricFamily) float64 {
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
}

func TestCollector_ObserveActivity(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveActivity(parse.ActivityMessage{
		EligiblePlotsCount: 2,
		FoundProofsCount:   1,
		SearchTimeSeconds:  0.5,
		TotalPlotsCount:    572,
	})
	c.ObserveActivity(parse.ActivityMessage{
		FoundProofsCount:  2,
		SearchTimeSeconds: 1.2,
		TotalPlotsCount:   573,
	})

	mfs := scrape(t, c)

	if got := counterValue(mfs["farmsentry_harvester_activity_messages_total"]); got != 2 {
		t.Errorf("activity_messages_total = %v, want 2", got)
	}
	if got := counterValue(mfs["farmsentry_harvester_proofs_found_total"]); got != 3 {
		t.Errorf("proofs_found_total = %v, want 3", got)
	}

	plots := mfs["farmsentry_harvester_total_plots"]
	if plots == nil || plots.GetMetric()[0].GetGauge().GetValue() != 573 {
		t.Errorf("total_plots gauge = %v, want 573", plots)
	}
}

func TestCollector_RecordEvent(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.RecordEvent(notify.NewKeepalive(notify.ServiceHarvester))
	c.RecordEvent(notify.NewUserEvent(notify.PriorityHigh, notify.ServiceHarvester, "drop"))
	c.RecordEvent(notify.NewUserEvent(notify.PriorityHigh, notify.ServiceHarvester, "drop again"))

	mfs := scrape(t, c)
	mf := mfs["farmsentry_notify_events_total"]
	if mf == nil {
		t.Fatal("events_total missing from exposition")
	}

	// One series per label combination: keepalive/normal and user/high.
	byLabels := map[string]float64{}
	for _, m := range mf.GetMetric() {
		key := ""
		for _, lp := range m.GetLabel() {
			key += lp.GetName() + "=" + lp.GetValue() + ";"
		}
		byLabels[key] = m.GetCounter().GetValue()
	}

	if got := byLabels["kind=keepalive;priority=normal;service=harvester;"]; got != 1 {
		t.Errorf("keepalive series = %v, want 1", got)
	}
	if got := byLabels["kind=user;priority=high;service=harvester;"]; got != 2 {
		t.Errorf("user/high series = %v, want 2", got)
	}
}
