package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsSplitsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.JobRun("order-reference-audit", 10*time.Millisecond, nil)
	m.JobRun("order-reference-audit", 10*time.Millisecond, errors.New("boom"))
	m.JobRun("order-reference-audit", 10*time.Millisecond, nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "maintenance_job_runs_total")
	if mf == nil {
		t.Fatal("runs counter not exported")
	}
	var success, failure float64
	for _, metric := range mf.GetMetric() {
		switch {
		case matchesLabel(metric.GetLabel(), "outcome", "success"):
			success = metric.GetCounter().GetValue()
		case matchesLabel(metric.GetLabel(), "outcome", "failure"):
			failure = metric.GetCounter().GetValue()
		}
	}
	if success != 2 || failure != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %f/%f", success, failure)
	}
	if gauge := findMetricFamily(mfs, "maintenance_job_last_success_timestamp_seconds"); gauge == nil || gauge.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatal("expected last success timestamp to be set")
	}
}

func TestNilJobMetricsIsNoop(t *testing.T) {
	var m *JobMetrics
	m.JobRun("x", time.Second, nil)
	NewJobMetrics(nil).JobRun("", time.Second, errors.New("x"))
}
