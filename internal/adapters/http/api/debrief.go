package api

import (
	"net/http"
)

// DebriefHandler serves the most recent debrief.
type DebriefHandler struct {
	deps Dependencies
}

// NewDebriefHandler creates a new debrief handler.
func NewDebriefHandler(deps Dependencies) *DebriefHandler {
	return &DebriefHandler{deps: deps}
}

// HandleGet handles GET /debrief requests.
func (h *DebriefHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_debrief"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	rep, err := h.deps.LastDebrief(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
