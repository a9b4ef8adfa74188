package api

import (
	"net/http"

	"github.com/okian/pitwall/internal/domain/debrief"
)

// SessionHandler handles session control and snapshot requests.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type stopResponse struct {
	Debrief *debrief.Report `json:"debrief"`
}

// HandleGet handles GET /session requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleStart handles POST /session/start requests.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	snap, err := h.deps.StartSession(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleStop handles POST /session/stop requests. The response waits for the
// debrief when one is due.
func (h *SessionHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	const op = "api.stop_session"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	rep, err := h.deps.StopSession(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stopResponse{Debrief: rep})
}
