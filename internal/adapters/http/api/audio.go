package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// AudioHandler handles the voice toggle.
type AudioHandler struct {
	deps Dependencies
}

// NewAudioHandler creates a new audio handler.
func NewAudioHandler(deps Dependencies) *AudioHandler {
	return &AudioHandler{deps: deps}
}

type audioRequest struct {
	Enabled *bool `json:"enabled"`
}

type audioResponse struct {
	Enabled bool `json:"enabled"`
}

// HandleAudio handles POST /audio requests.
func (h *AudioHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_audio"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	var req audioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing enabled")))
		return
	}
	if err := h.deps.SetAudio(r.Context(), *req.Enabled); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{Enabled: *req.Enabled})
}

type audioTestResponse struct {
	Spoken bool `json:"spoken"`
}

// HandleTest handles POST /audio/test: a high priority line through the
// speech policy. Spoken is false when voice is off or the line was refused.
func (h *AudioHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	const op = "api.test_audio"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	spoken, err := h.deps.TestAudio(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, audioTestResponse{Spoken: spoken})
}
