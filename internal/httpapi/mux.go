package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ali-sehran/air-quality-dashboard/internal/metrics"
	"github.com/ali-sehran/air-quality-dashboard/internal/utils"
)

// NewRouter returns the base router with request ids, access logging,
// request metrics, /healthz and /metrics. Feature modules add their routes to it.
func NewRouter(gatherer prometheus.Gatherer, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(m))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteStatus(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteStatus(w, http.StatusMethodNotAllowed)
	})

	registerHealthcheck(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
