// Package service runs the racing session engine: telemetry, edge events,
// coaching and debriefs, all serialized through one loop goroutine.
package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/pitwall/internal/adapters/http/feed"
	"github.com/okian/pitwall/internal/adapters/mq/queue"
	"github.com/okian/pitwall/internal/adapters/mq/worker"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/coach"
	"github.com/okian/pitwall/internal/domain/debrief"
	"github.com/okian/pitwall/internal/domain/dispatch"
	"github.com/okian/pitwall/internal/domain/nano"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/speech"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Broadcaster pushes typed messages to live clients.
type Broadcaster interface {
	Broadcast(typ string, data any) error
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, any) error { return nil }

// Service owns one racing session engine.
type Service struct {
	mu sync.RWMutex

	cfg      config.Config
	backend  backend.Backend
	speaker  speech.Speaker
	feed     Broadcaster
	pedagogy *pedagogy.Base
	now      func() time.Time

	// Components
	stream     *telemetry.Stream
	history    *telemetry.History
	detector   *nano.Detector
	advisor    *coach.Advisor
	debriefer  *debrief.Generator
	announcer  *speech.Announcer
	log        *advisory.Log
	dispatcher *dispatch.Dispatcher
	queue      *queue.InMemoryQueue

	// Lifecycle
	started  bool
	cmds     chan func()
	cancel   context.CancelFunc
	loopDone chan struct{}

	// Loop-owned state
	state state

	logger logger.Logger
}

// state is touched only by the loop goroutine.
type state struct {
	ctx            context.Context
	sessionID      string
	running        bool
	startedAt      time.Time
	stoppedAt      time.Time
	frame          telemetry.Frame
	worker         *worker.CoachWorker
	telemetryT     *time.Ticker
	eventT         *time.Ticker
	coachT         *time.Ticker
	debriefLoading bool
	report         *debrief.Report
}

// New constructs a Service and its components.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    *config.New(),
		feed:   nopBroadcaster{},
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pedagogy == nil {
		s.pedagogy = pedagogy.Default()
	}
	s.build()
	return s
}

func (s *Service) build() {
	seed := s.cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s.stream = telemetry.NewStream(telemetry.NewSynthetic(rand.New(rand.NewSource(seed))))
	s.history = telemetry.NewHistory(s.cfg.SpeedHistorySize)
	s.detector = nano.NewDetector(nano.WithRand(rand.New(rand.NewSource(seed + 1))))
	s.advisor = coach.New(
		coach.WithBackend(s.backend),
		coach.WithModel(s.cfg.CoachModel),
		coach.WithTimeout(config.Ms(s.cfg.CoachTimeoutMS)),
		coach.WithMockLatency(config.Ms(s.cfg.MockCoachLatencyMS)),
		coach.WithPedagogy(s.pedagogy),
		coach.WithLogger(s.logger.Named("coach")),
	)
	s.debriefer = debrief.New(
		debrief.WithBackend(s.backend),
		debrief.WithModel(s.cfg.DebriefModel),
		debrief.WithTimeout(config.Ms(s.cfg.DebriefTimeoutMS)),
		debrief.WithMockLatency(config.Ms(s.cfg.MockDebriefLatencyMS)),
		debrief.WithRand(rand.New(rand.NewSource(seed+2))),
		debrief.WithPedagogy(s.pedagogy),
		debrief.WithLogLines(s.cfg.DebriefLogLines),
		debrief.WithLogger(s.logger.Named("debrief")),
	)

	rules, err := speech.MuteRulesFor(s.cfg.SpeechMutePolicy)
	if err != nil {
		s.logger.Warn(context.Background(), "unknown mute policy, using visual-core",
			logger.String("policy", s.cfg.SpeechMutePolicy))
		rules, _ = speech.MuteRulesFor(speech.PresetVisualCore)
	}
	policy := speech.NewPolicy(
		speech.WithDedupWindow(config.Ms(s.cfg.SpeechDedupWindowMS)),
		speech.WithBuffer(config.Ms(s.cfg.SpeechBufferMS)),
		speech.WithMuteRules(rules),
		speech.WithEnabled(s.cfg.VoiceEnabled),
	)
	speaker := s.speaker
	if speaker == nil {
		speaker = speech.NewLogSpeaker(s.logger.Named("speech"))
	}
	s.announcer = speech.NewAnnouncer(policy, speech.NewVoices(nil), speaker,
		speech.WithClock(s.now),
		speech.WithLogger(s.logger.Named("speech")),
	)

	s.log = advisory.NewLog(s.cfg.LogCapacity)
	s.dispatcher = dispatch.New(s.announcer, s.log,
		dispatch.WithClock(s.now),
		dispatch.WithLogger(s.logger.Named("dispatch")),
	)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.AdvisoryQueueSize))
}

// Start launches the session loop. The loop lives until Stop or until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.queue.IsClosed() {
		s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.AdvisoryQueueSize))
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.cmds = make(chan func())
	s.loopDone = make(chan struct{})
	s.started = true

	go s.loop(runCtx)

	s.logger.Info(ctx, "session engine started",
		logger.Bool("live_backend", s.advisor.Live()),
		logger.String("mute_policy", s.cfg.SpeechMutePolicy),
		logger.Bool("voice", s.cfg.VoiceEnabled),
	)
	return nil
}

// Stop ends any running session and shuts the loop down. No debrief is run.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.loopDone
	_ = s.queue.Close()
	s.started = false
	s.logger.Info(context.Background(), "session engine stopped")
}

// do runs fn on the loop goroutine and waits for it.
func (s *Service) do(ctx context.Context, fn func()) error {
	s.mu.RLock()
	started, cmds, loopDone := s.started, s.cmds, s.loopDone
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	done := make(chan struct{})
	select {
	case cmds <- func() { defer close(done); fn() }:
	case <-loopDone:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.loopDone)
	s.state.ctx = ctx
	advisories := s.queue.Dequeue()

	for {
		st := &s.state
		select {
		case <-ctx.Done():
			s.halt(context.Background())
			return

		case fn := <-s.cmds:
			fn()

		case now := <-tick(st.telemetryT):
			s.onTelemetry(ctx, now)

		case <-tick(st.eventT):
			s.onEvent(ctx)

		case <-tick(st.coachT):
			st.worker.TryAdvise(st.frame)

		case adv, ok := <-advisories:
			if !ok {
				advisories = nil
				continue
			}
			s.onAdvisory(ctx, adv)
		}
	}
}

// tick returns the ticker channel, or nil so the select case never fires.
func tick(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (s *Service) onTelemetry(ctx context.Context, _ time.Time) {
	f := s.stream.Next(s.now())
	s.state.frame = f
	s.history.Push(f.Speed)
	metrics.RecordTelemetryFrame(string(s.stream.Mode()))
	s.broadcast(ctx, feed.TypeTelemetry, f)
}

func (s *Service) onEvent(ctx context.Context) {
	adv, ok := s.detector.Detect(s.state.frame)
	if !ok {
		return
	}
	metrics.RecordNanoEvent()
	s.dispatch(ctx, adv)
}

func (s *Service) onAdvisory(ctx context.Context, adv advisory.Advisory) {
	if !s.state.running {
		s.logger.Debug(ctx, "dropping advisory after session end", logger.String("agent", string(adv.Agent)))
		return
	}
	s.dispatch(ctx, adv)
}

func (s *Service) dispatch(ctx context.Context, adv advisory.Advisory) {
	entry := s.dispatcher.Dispatch(ctx, adv)
	s.broadcast(ctx, feed.TypeAdvisory, entry)
}

func (s *Service) broadcast(ctx context.Context, typ string, data any) {
	if err := s.feed.Broadcast(typ, data); err != nil {
		s.logger.Warn(ctx, "broadcast failed", logger.String("type", typ), logger.Error(err))
	}
}

// stopTimers stops the session tickers and detaches the coaching worker so
// the caller can wait on it.
func (s *Service) stopTimers() *worker.CoachWorker {
	st := &s.state
	for _, t := range []*time.Ticker{st.telemetryT, st.eventT, st.coachT} {
		if t != nil {
			t.Stop()
		}
	}
	st.telemetryT, st.eventT, st.coachT = nil, nil, nil
	w := st.worker
	st.worker = nil
	return w
}

// halt ends the session from inside the loop without a debrief.
func (s *Service) halt(ctx context.Context) {
	if !s.state.running {
		return
	}
	s.state.running = false
	s.state.stoppedAt = s.now()
	w := s.stopTimers()
	s.announcer.Cancel(ctx)
	metrics.SetSessionActive(false)
	if w == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := w.Shutdown(sctx); err != nil {
		s.logger.Warn(ctx, "coaching worker did not stop", logger.Error(err))
	}
}

// UpdateVoices re-resolves persona voices from a client's voice list.
func (s *Service) UpdateVoices(ctx context.Context, voices []speech.Voice) {
	s.announcer.UpdateVoices(ctx, voices)
}

// Pedagogy returns the knowledge base.
func (s *Service) Pedagogy() *pedagogy.Base { return s.pedagogy }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           started,
		"liveBackend":       s.advisor.Live(),
		"mutePolicy":        s.cfg.SpeechMutePolicy,
		"logCapacity":       s.cfg.LogCapacity,
		"advisoryQueueSize": s.cfg.AdvisoryQueueSize,
		"queueLength":       q.Len(),
		"audioEnabled":      s.announcer.Enabled(),
	}
	if !started {
		return stats
	}
	if snap, err := s.Snapshot(context.Background()); err == nil {
		stats["running"] = snap.Running
		stats["sessionId"] = snap.SessionID
		stats["mode"] = snap.Mode
		stats["replayFrames"] = snap.ReplayFrames
		stats["logLength"] = len(snap.Log)
		stats["coachingBusy"] = snap.CoachingBusy
	}
	return stats
}
