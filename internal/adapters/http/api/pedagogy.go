package api

import (
	"io"
	"net/http"
)

// PedagogyHandler serves the coaching knowledge base.
type PedagogyHandler struct {
	deps Dependencies
}

// NewPedagogyHandler creates a new pedagogy handler.
func NewPedagogyHandler(deps Dependencies) *PedagogyHandler {
	return &PedagogyHandler{deps: deps}
}

// HandleGet handles GET /pedagogy requests.
func (h *PedagogyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.get_pedagogy", http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.deps.Pedagogy().JSON())
}
