package api

import (
	"net/http"

	"github.com/okian/pitwall/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves the Prometheus exposition on /healthz and /metrics.
// A scrape that succeeds doubles as the liveness check.
type HealthHandler struct {
	exposition http.Handler
}

// NewHealthHandler builds the exposition handler once over the private registry.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		exposition: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}),
	}
}

// HandleHealth handles GET /healthz and GET /metrics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "api.health", http.MethodGet)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
