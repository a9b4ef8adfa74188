package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitwall/internal/adapters/http/feed"
	"github.com/okian/pitwall/internal/adapters/ingest"
	"github.com/okian/pitwall/internal/adapters/mq/worker"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/debrief"
	"github.com/okian/pitwall/internal/domain/speech"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Snapshot is a copy of the session state for presentation.
type Snapshot struct {
	SessionID      string              `json:"session_id"`
	Running        bool                `json:"running"`
	Mode           telemetry.Mode      `json:"mode"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	ReplayFrames   int                 `json:"replay_frames"`
	ReplayIndex    int                 `json:"replay_index"`
	Telemetry      telemetry.Frame     `json:"telemetry"`
	SpeedHistory   []float64           `json:"speed_history"`
	Log            []advisory.LogEntry `json:"log"`
	AudioEnabled   bool                `json:"audio_enabled"`
	CoachingBusy   bool                `json:"coaching_busy"`
	DebriefLoading bool                `json:"debrief_loading"`
	Debrief        *debrief.Report     `json:"debrief"`
}

// StartSession clears the log and history, starts the timers and fires the
// first coaching request immediately.
func (s *Service) StartSession(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	doErr := s.do(ctx, func() {
		st := &s.state
		if st.running || st.debriefLoading {
			err = ErrAlreadyRunning
			return
		}
		now := s.now()

		st.sessionID = uuid.NewString()
		st.running = true
		st.startedAt = now
		st.stoppedAt = time.Time{}
		st.report = nil

		s.history.Reset()
		if n := s.queue.Drain(); n > 0 {
			s.logger.Debug(ctx, "discarded stale advisories", logger.Int("count", n))
		}
		seed := s.log.Reset(advisory.SessionStarted, advisory.StatusStyle, now)
		s.broadcast(ctx, feed.TypeAdvisory, seed)

		st.telemetryT = time.NewTicker(config.Ms(s.cfg.TelemetryIntervalMS))
		st.eventT = time.NewTicker(config.Ms(s.cfg.EventIntervalMS))
		st.coachT = time.NewTicker(config.Ms(s.cfg.CoachIntervalMS))
		st.worker = worker.NewCoachWorker(st.ctx, s.advisor, s.queue,
			worker.WithName("coach-"+st.sessionID[:8]),
			worker.WithLogger(s.logger.Named("coach")),
		)

		s.onTelemetry(ctx, now)
		st.worker.TryAdvise(st.frame)

		metrics.SetSessionActive(true)
		s.announcer.Reset()
		s.announcer.SpeakDirect(ctx, speech.Engaged)

		snap = s.snapshot()
		s.broadcast(ctx, feed.TypeSession, snap)
		s.logger.Info(ctx, "session started",
			logger.String("session", st.sessionID),
			logger.String("mode", string(s.stream.Mode())))
	})
	if doErr != nil {
		return Snapshot{}, doErr
	}
	return snap, err
}

// StopSession stops the timers, aborts coaching in flight and silences
// speech. When the log holds enough entries it then runs the debrief and
// returns its report; otherwise the report is nil.
func (s *Service) StopSession(ctx context.Context) (*debrief.Report, error) {
	var (
		w       *worker.CoachWorker
		entries []advisory.LogEntry
		speeds  []float64
		need    bool
		id      string
		err     error
	)
	doErr := s.do(ctx, func() {
		st := &s.state
		if !st.running {
			err = ErrNotRunning
			return
		}
		st.running = false
		st.stoppedAt = s.now()
		w = s.stopTimers()
		s.announcer.Cancel(ctx)
		metrics.SetSessionActive(false)

		id = st.sessionID
		entries = s.log.Entries()
		speeds = s.history.Values()
		need = len(entries) >= s.cfg.DebriefMinEntries
		st.debriefLoading = need
		s.broadcast(ctx, feed.TypeSession, s.snapshot())
	})
	if doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}

	if w != nil {
		sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := w.Shutdown(sctx); err != nil {
			s.logger.Warn(ctx, "coaching worker did not stop", logger.Error(err))
		}
		cancel()
	}

	s.logger.Info(ctx, "session stopped",
		logger.String("session", id),
		logger.Int("log_entries", len(entries)),
		logger.Bool("debrief", need))
	if !need {
		return nil, nil
	}

	report := s.debriefer.Generate(ctx, entries, speeds)
	_ = s.do(context.Background(), func() {
		s.state.report = &report
		s.state.debriefLoading = false
		s.broadcast(ctx, feed.TypeDebrief, report)
	})
	return &report, nil
}

// LoadReplay parses a telemetry table and installs it as the replay source.
// A failed parse leaves the current source untouched.
func (s *Service) LoadReplay(ctx context.Context, r io.Reader) (int, error) {
	frames, perr := ingest.ParseCSV(r)
	var err error
	doErr := s.do(ctx, func() {
		if perr != nil {
			metrics.RecordReplayLoad(false, 0)
			s.logger.Warn(ctx, "replay ingestion failed", logger.Error(perr))
			s.dispatch(ctx, advisory.IngestFailed)
			err = fmt.Errorf("%w: %w", ErrIngest, perr)
			return
		}
		if lerr := s.stream.Load(frames); lerr != nil {
			metrics.RecordReplayLoad(false, 0)
			s.dispatch(ctx, advisory.IngestFailed)
			err = fmt.Errorf("%w: %w", ErrIngest, lerr)
			return
		}
		metrics.RecordReplayLoad(true, len(frames))
		s.dispatch(ctx, advisory.New(advisory.AgentSystem, "INGEST",
			fmt.Sprintf("CSV Loaded: %d frames ready.", len(frames)), advisory.PriorityNormal))
		s.logger.Info(ctx, "replay loaded", logger.Int("frames", len(frames)))
	})
	if doErr != nil {
		return 0, doErr
	}
	if err != nil {
		return 0, err
	}
	return len(frames), nil
}

// EjectReplay returns the stream to synthetic telemetry.
func (s *Service) EjectReplay(ctx context.Context) error {
	return s.do(ctx, func() {
		if s.stream.Mode() == telemetry.ModeReplay {
			s.stream.Eject()
			metrics.ClearReplayFrames()
			s.logger.Info(ctx, "replay ejected")
		}
	})
}

// SetAudio toggles voice output. Turning it off cancels speech in flight.
func (s *Service) SetAudio(ctx context.Context, on bool) error {
	return s.do(ctx, func() {
		s.announcer.SetEnabled(ctx, on)
	})
}

// TestAudio announces the audio check line through the speech policy and
// reports whether it was spoken. It does not touch the log.
func (s *Service) TestAudio(ctx context.Context) (bool, error) {
	var spoken bool
	if err := s.do(ctx, func() { spoken = s.announcer.Announce(ctx, advisory.AudioCheck) }); err != nil {
		return false, err
	}
	return spoken, nil
}

// Snapshot returns a copy of the session state.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := s.do(ctx, func() { snap = s.snapshot() }); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LastDebrief returns the most recent report, if any.
func (s *Service) LastDebrief(ctx context.Context) (*debrief.Report, error) {
	var rep *debrief.Report
	err := s.do(ctx, func() {
		if s.state.report != nil {
			r := *s.state.report
			rep = &r
		}
	})
	return rep, err
}

func (s *Service) snapshot() Snapshot {
	st := &s.state
	snap := Snapshot{
		SessionID:      st.sessionID,
		Running:        st.running,
		Mode:           s.stream.Mode(),
		ReplayFrames:   s.stream.ReplayLen(),
		ReplayIndex:    s.stream.ReplayIndex(),
		Telemetry:      st.frame,
		SpeedHistory:   s.history.Values(),
		Log:            s.log.Entries(),
		AudioEnabled:   s.announcer.Enabled(),
		CoachingBusy:   st.worker != nil && st.worker.Busy(),
		DebriefLoading: st.debriefLoading,
	}
	switch {
	case st.running:
		snap.ElapsedSeconds = s.now().Sub(st.startedAt).Seconds()
	case !st.startedAt.IsZero():
		snap.ElapsedSeconds = st.stoppedAt.Sub(st.startedAt).Seconds()
	}
	if st.report != nil {
		r := *st.report
		snap.Debrief = &r
	}
	return snap
}
