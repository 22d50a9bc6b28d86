package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpstream("sensors", 200, 50*time.Millisecond)
	m.ObserveUpstream("sensors", 0, time.Millisecond)
	m.SensorFailed()
	m.SensorFailed()
	m.ObserveIngestion("ok", time.Second)
	m.ObserveHTTP("GET", "/api/airquality", 200)

	if got := testutil.ToFloat64(m.sensorFailures); got != 2 {
		t.Errorf("sensor failures = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/airquality", "200")); got != 1 {
		t.Errorf("http requests = %v; want 1", got)
	}
	if got := testutil.CollectAndCount(m.upstreamDuration); got != 2 {
		t.Errorf("upstream series = %d; want 2 (200 and error)", got)
	}
	if got := testutil.CollectAndCount(m.ingestionDuration); got != 1 {
		t.Errorf("ingestion series = %d; want 1", got)
	}
}

func TestMetrics_nilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpstream("sensors", 200, time.Second)
	m.SensorFailed()
	m.ObserveIngestion("error", time.Second)
	m.ObserveHTTP("GET", "/", 500)
}

func TestNew_registersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("second New on the same registry should panic on duplicate registration")
		}
	}()
	New(reg)
}
