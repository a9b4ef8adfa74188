package api

import (
	"net/http"
	"time"
)

// StatsProvider exposes engine statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// ClientCounter reports connected live-feed clients.
type ClientCounter interface {
	Clients() int
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
	clients  ClientCounter
	started  time.Time
}

// NewStatsHandler creates a stats handler; uptime counts from its creation.
// clients may be nil.
func NewStatsHandler(provider StatsProvider, clients ClientCounter) *StatsHandler {
	return &StatsHandler{provider: provider, clients: clients, started: time.Now()}
}

type statsResponse struct {
	UptimeSeconds float64                `json:"uptime_seconds"`
	FeedClients   int                    `json:"feed_clients"`
	Engine        map[string]interface{} `json:"engine"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.get_stats", http.MethodGet)
		return
	}
	resp := statsResponse{
		UptimeSeconds: time.Since(h.started).Seconds(),
		Engine:        h.provider.GetStats(),
	}
	if h.clients != nil {
		resp.FeedClients = h.clients.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}
