// Package coach produces short persona advisories from live telemetry, either
// through a generative backend or from deterministic rules.
package coach

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
)

// Outcome sources. They double as metric labels.
const (
	SourceLive           = "live"
	SourceMock           = "mock"
	SourceTimeout        = "timeout"
	SourceClientError    = "client_error"
	SourceNetworkWarning = "network_warning"
	SourceNone           = "none"
)

// Defaults.
const (
	DefaultModel       = "gemini-2.0-flash-001"
	DefaultTimeout     = 8 * time.Second
	DefaultMockLatency = 800 * time.Millisecond
)

// Persona roles.
const (
	RoleCrewChief = "CREW CHIEF"
	RoleTelemetry = "TELEMETRY"
	RoleCore      = "CORE"
)

// Outcome is the result of one coaching request. Advisory is nil when there
// is nothing to say.
type Outcome struct {
	Advisory *advisory.Advisory
	Source   string
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithBackend enables the live path. A nil backend keeps the advisor on mock rules.
func WithBackend(b backend.Backend) Option {
	return func(a *Advisor) { a.backend = b }
}

// WithModel sets the coaching model name.
func WithModel(model string) Option {
	return func(a *Advisor) {
		if model != "" {
			a.model = model
		}
	}
}

// WithTimeout sets the hard request timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMockLatency sets the simulated latency of the mock path.
func WithMockLatency(d time.Duration) Option {
	return func(a *Advisor) {
		if d >= 0 {
			a.mockLatency = d
		}
	}
}

// WithPedagogy sets the grounding knowledge base.
func WithPedagogy(p *pedagogy.Base) Option {
	return func(a *Advisor) {
		if p != nil {
			a.pedagogy = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// Advisor answers coaching ticks. It does not guard against concurrent calls;
// the session engine runs at most one at a time.
type Advisor struct {
	backend     backend.Backend
	model       string
	timeout     time.Duration
	mockLatency time.Duration
	pedagogy    *pedagogy.Base
	system      string
	log         logger.Logger
}

// New creates an Advisor.
func New(opts ...Option) *Advisor {
	a := &Advisor{
		model:       DefaultModel,
		timeout:     DefaultTimeout,
		mockLatency: DefaultMockLatency,
		pedagogy:    pedagogy.Default(),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.system = SystemPrompt(a.pedagogy)
	return a
}

// Live reports whether a backend is configured.
func (a *Advisor) Live() bool { return a.backend != nil }

// Advise produces at most one advisory for f.
func (a *Advisor) Advise(ctx context.Context, f telemetry.Frame) Outcome {
	if a.backend == nil {
		return a.mock(ctx, f)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reply, err := a.backend.Generate(callCtx, backend.Request{
		Model:  a.model,
		System: a.system,
		User:   UserPrompt(f),
	})
	if err == nil {
		return a.decode(ctx, reply, f)
	}
	if callCtx.Err() != nil && !errors.Is(err, backend.ErrTimeout) {
		err = fmt.Errorf("%w: %w", backend.ErrTimeout, err)
	}
	return a.degrade(ctx, err, f)
}

func (a *Advisor) decode(ctx context.Context, reply string, f telemetry.Frame) Outcome {
	adv, err := parseAdvice(reply)
	switch {
	case errors.Is(err, backend.ErrEmpty):
		return Outcome{Source: SourceNone}
	case err != nil:
		return a.degrade(ctx, err, f)
	case adv == nil:
		a.log.Debug(ctx, "coaching reply discarded", logger.String("reply", reply))
		return Outcome{Source: SourceNone}
	}
	return Outcome{Advisory: adv, Source: SourceLive}
}

// degrade applies the failure policy: timeouts say nothing, client-class
// rejections fall back to rules silently, anything else raises one warning.
func (a *Advisor) degrade(ctx context.Context, err error, f telemetry.Frame) Outcome {
	switch {
	case errors.Is(err, backend.ErrTimeout), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		a.log.Warn(ctx, "coaching request timed out", logger.Error(err))
		return Outcome{Source: SourceTimeout}
	case errors.Is(err, backend.ErrClient):
		a.log.Info(ctx, "coaching backend rejected request, using rules", logger.Error(err))
		return Outcome{Advisory: Mock(f), Source: SourceClientError}
	default:
		a.log.Warn(ctx, "coaching backend unreachable", logger.Error(err))
		w := advisory.CoachWarning
		return Outcome{Advisory: &w, Source: SourceNetworkWarning}
	}
}

func (a *Advisor) mock(ctx context.Context, f telemetry.Frame) Outcome {
	if a.mockLatency > 0 {
		timer := time.NewTimer(a.mockLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Outcome{Source: SourceTimeout}
		case <-timer.C:
		}
	}
	return Outcome{Advisory: Mock(f), Source: SourceMock}
}

// Mock applies the rule set in priority order; first match wins.
func Mock(f telemetry.Frame) *advisory.Advisory {
	var adv advisory.Advisory
	switch {
	case f.Speed > 135:
		adv = advisory.New(advisory.AgentAJ, RoleCrewChief, "Good pace. Keep the momentum up.", advisory.PriorityNormal)
	case math.Abs(f.LatG) > 1.1:
		adv = advisory.New(advisory.AgentRoss, RoleTelemetry, "High lateral load detected. Smooth inputs.", advisory.PriorityNormal)
	case f.Brake > 30:
		adv = advisory.New(advisory.AgentAJ, RoleCrewChief, "Braking zone. Compress the pedal.", advisory.PriorityHigh)
	default:
		return nil
	}
	return &adv
}
