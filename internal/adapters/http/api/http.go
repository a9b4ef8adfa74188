// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/domain/debrief"
	"github.com/okian/pitwall/internal/domain/pedagogy"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session engine.
type Dependencies interface {
	StartSession(ctx context.Context) (service.Snapshot, error)
	StopSession(ctx context.Context) (*debrief.Report, error)
	Snapshot(ctx context.Context) (service.Snapshot, error)
	LoadReplay(ctx context.Context, r io.Reader) (int, error)
	EjectReplay(ctx context.Context) error
	SetAudio(ctx context.Context, on bool) error
	TestAudio(ctx context.Context) (bool, error)
	LastDebrief(ctx context.Context) (*debrief.Report, error)
	Pedagogy() *pedagogy.Base
}

// Server wires HTTP routes for the session API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionHandler  *SessionHandler
	replayHandler   *ReplayHandler
	audioHandler    *AudioHandler
	debriefHandler  *DebriefHandler
	pedagogyHandler *PedagogyHandler
	feed            http.Handler
}

// NewServer creates a new API server with all handlers. feed serves the
// websocket upgrade; nil leaves /feed unregistered. A feed that counts its
// clients has the count reported by /stats.
func NewServer(deps Dependencies, statsProvider StatsProvider, feed http.Handler) *Server {
	clients, _ := feed.(ClientCounter)
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider, clients),
		sessionHandler:  NewSessionHandler(deps),
		replayHandler:   NewReplayHandler(deps),
		audioHandler:    NewAudioHandler(deps),
		debriefHandler:  NewDebriefHandler(deps),
		pedagogyHandler: NewPedagogyHandler(deps),
		feed:            feed,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleGet, "session"))
	mux.HandleFunc("/session/start", MetricsMiddleware(s.sessionHandler.HandleStart, "session_start"))
	mux.HandleFunc("/session/stop", MetricsMiddleware(s.sessionHandler.HandleStop, "session_stop"))
	mux.HandleFunc("/replay", MetricsMiddleware(s.replayHandler.HandleReplay, "replay"))
	mux.HandleFunc("/audio", MetricsMiddleware(s.audioHandler.HandleAudio, "audio"))
	mux.HandleFunc("/audio/test", MetricsMiddleware(s.audioHandler.HandleTest, "audio_test"))
	mux.HandleFunc("/debrief", MetricsMiddleware(s.debriefHandler.HandleGet, "debrief"))
	mux.HandleFunc("/pedagogy", MetricsMiddleware(s.pedagogyHandler.HandleGet, "pedagogy"))
	if s.feed != nil {
		// no metrics wrapper: the upgrade needs the raw http.Hijacker
		mux.Handle("/feed", s.feed)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrBadRequest))
}

// writeServiceError maps session engine errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, "already_running", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrNotRunning):
		writeError(w, http.StatusConflict, "not_running", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrIngest):
		writeError(w, http.StatusBadRequest, "ingest_failed", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
	}
}
