package api

import (
	"io"
	"mime"
	"net/http"
)

const (
	maxReplayBytes = 32 << 20
	replayFormFile = "file"
)

// ReplayHandler handles replay upload and eject requests.
type ReplayHandler struct {
	deps Dependencies
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(deps Dependencies) *ReplayHandler {
	return &ReplayHandler{deps: deps}
}

type replayResponse struct {
	Frames int `json:"frames"`
}

// HandleReplay handles POST /replay (CSV body or multipart "file") and
// DELETE /replay.
func (h *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.load(w, r)
	case http.MethodDelete:
		h.eject(w, r)
	default:
		methodNotAllowed(w, "api.replay", http.MethodPost+", "+http.MethodDelete)
	}
}

func (h *ReplayHandler) load(w http.ResponseWriter, r *http.Request) {
	const op = "api.load_replay"
	r.Body = http.MaxBytesReader(w, r.Body, maxReplayBytes)

	var body io.Reader = r.Body
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "multipart/form-data" {
		f, _, err := r.FormFile(replayFormFile)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		defer f.Close()
		body = f
	}

	n, err := h.deps.LoadReplay(r.Context(), body)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, replayResponse{Frames: n})
}

func (h *ReplayHandler) eject(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.EjectReplay(r.Context()); err != nil {
		writeServiceError(w, "api.eject_replay", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
