package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter != nil {
		return metric.Counter.GetValue()
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.RenderRunsTotal == nil || r.RenderTickDuration == nil || r.DatasetLoadsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecordTick(t *testing.T) {
	r := NewRegistry()
	r.RecordTick(500, 250, 2*time.Millisecond)
	r.RecordTick(10, 0, time.Millisecond)

	if v := counterValue(t, r.RenderTicksTotal); v != 2 {
		t.Errorf("ticks = %v, want 2", v)
	}
	if v := counterValue(t, r.RenderPrimitivesTotal.WithLabelValues("point")); v != 510 {
		t.Errorf("points = %v, want 510", v)
	}
	if v := counterValue(t, r.RenderPrimitivesTotal.WithLabelValues("line")); v != 250 {
		t.Errorf("lines = %v, want 250", v)
	}
}

func TestRecordRun(t *testing.T) {
	r := NewRegistry()
	r.RecordRunStart()
	if v := counterValue(t, r.RenderInFlight); v != 1 {
		t.Errorf("in flight = %v, want 1", v)
	}
	r.RecordRun(OutcomeCancelled, 0)
	r.RecordRunStart()
	r.RecordRun(OutcomeCompleted, time.Second)

	if v := counterValue(t, r.RenderInFlight); v != 0 {
		t.Errorf("in flight = %v, want 0", v)
	}
	for _, outcome := range []string{OutcomeCancelled, OutcomeCompleted} {
		if v := counterValue(t, r.RenderRunsTotal.WithLabelValues(outcome)); v != 1 {
			t.Errorf("%s runs = %v, want 1", outcome, v)
		}
	}
}

func TestRecordLoad(t *testing.T) {
	r := NewRegistry()
	r.RecordLoad(nil, 42)
	r.RecordLoad(errors.New("missing"), 7)

	if v := counterValue(t, r.DatasetElements); v != 42 {
		t.Errorf("elements = %v, want 42", v)
	}
	if v := counterValue(t, r.DatasetLoadsTotal.WithLabelValues("error")); v != 1 {
		t.Errorf("errors = %v, want 1", v)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	r.RecordRunStart()
	r.RecordRun(OutcomeCompleted, time.Second)
	r.RecordTick(1, 1, time.Millisecond)
	r.RecordLoad(nil, 1)
	r.RecordSelection()
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordSelection()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "primeview_selections_total 1") {
		t.Errorf("selections missing from exposition:\n%s", body)
	}
}
