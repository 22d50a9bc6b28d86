package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors the service exposes on /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	upstreamDuration  *prometheus.HistogramVec
	sensorFailures    prometheus.Counter
	ingestionDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		upstreamDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airquality_upstream_request_duration_seconds",
				Help:    "Duration of requests to the OpenAQ API.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		sensorFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "airquality_sensor_fetch_failures_total",
				Help: "Sensors whose measurements could not be fetched.",
			},
		),
		ingestionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airquality_ingestion_duration_seconds",
				Help:    "Duration of a full sensors + measurements ingestion run.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airquality_http_requests_total",
				Help: "Inbound HTTP requests by route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveUpstream records one OpenAQ request. status 0 means no response.
func (m *Metrics) ObserveUpstream(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamDuration.WithLabelValues(endpoint, label).Observe(d.Seconds())
}

func (m *Metrics) SensorFailed() {
	if m == nil {
		return
	}
	m.sensorFailures.Inc()
}

// ObserveIngestion records a run; outcome is "ok" or "error".
func (m *Metrics) ObserveIngestion(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ingestionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
