// Package debrief turns a finished session into a scored report.
package debrief

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Defaults.
const (
	DefaultModel       = "gemini-2.5-pro"
	DefaultTimeout     = 60 * time.Second
	DefaultMockLatency = 1500 * time.Millisecond
	DefaultLogLines    = 15
)

// Report is the end-of-session summary. Exactly one of CoachingTip and
// ActionPlan is normally set.
type Report struct {
	Score        int      `json:"score"`
	Verdict      string   `json:"verdict"`
	PrimaryIssue string   `json:"primary_issue"`
	CoachingTip  string   `json:"coaching_tip,omitempty"`
	ActionPlan   []string `json:"action_plan,omitempty"`
	// Plan is ActionPlan split into plain and bold runs for display.
	Plan [][]Span `json:"plan,omitempty"`
}

// Failed is returned whenever a report cannot be produced.
func Failed() Report {
	return Report{
		Score:        0,
		Verdict:      "Data analysis failed.",
		PrimaryIssue: "Connection Error",
		CoachingTip:  "Please check network connection and try again.",
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithBackend enables the live path.
func WithBackend(b backend.Backend) Option {
	return func(g *Generator) { g.backend = b }
}

// WithModel sets the debrief model name.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTimeout bounds a live call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMockLatency sets the simulated latency of the mock report.
func WithMockLatency(d time.Duration) Option {
	return func(g *Generator) {
		if d >= 0 {
			g.mockLatency = d
		}
	}
}

// WithRand injects the source for the mock score.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithPedagogy sets the reference knowledge base.
func WithPedagogy(p *pedagogy.Base) Option {
	return func(g *Generator) {
		if p != nil {
			g.pedagogy = p
		}
	}
}

// WithLogLines sets how many recent log entries are summarized.
func WithLogLines(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.logLines = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// Generator produces debrief reports.
type Generator struct {
	backend     backend.Backend
	model       string
	timeout     time.Duration
	mockLatency time.Duration
	pedagogy    *pedagogy.Base
	logLines    int
	log         logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		model:       DefaultModel,
		timeout:     DefaultTimeout,
		mockLatency: DefaultMockLatency,
		pedagogy:    pedagogy.Default(),
		logLines:    DefaultLogLines,
		log:         logger.Nop(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // mock score only
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate summarizes a session. log is newest first. It never fails: any
// error resolves to the Failed report.
func (g *Generator) Generate(ctx context.Context, log []advisory.LogEntry, speeds []float64) Report {
	start := time.Now()
	report, outcome := g.generate(ctx, log, speeds)
	metrics.RecordDebrief(outcome, float64(time.Since(start).Milliseconds()))
	return report
}

func (g *Generator) generate(ctx context.Context, log []advisory.LogEntry, speeds []float64) (Report, string) {
	if g.backend == nil {
		return g.mock(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := g.backend.Generate(callCtx, backend.Request{
		Model: g.model,
		User:  Prompt(g.recent(log), telemetry.Max(speeds), telemetry.Mean(speeds), g.pedagogy),
	})
	if err != nil {
		g.log.Error(ctx, "debrief request failed", logger.Error(err))
		return Failed(), "failed"
	}
	report, err := parseReport(reply)
	if err != nil {
		g.log.Error(ctx, "debrief reply unusable", logger.Error(err))
		return Failed(), "failed"
	}
	return report, "live"
}

func (g *Generator) mock(ctx context.Context) (Report, string) {
	if g.mockLatency > 0 {
		timer := time.NewTimer(g.mockLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			g.log.Error(ctx, "debrief cancelled", logger.Error(ctx.Err()))
			return Failed(), "failed"
		case <-timer.C:
		}
	}
	g.mu.Lock()
	score := int(math.Floor(85 + g.rng.Float64()*10))
	g.mu.Unlock()
	return Report{
		Score:        score,
		Verdict:      "Strong pace, but consistency needs work in Sector 2.",
		PrimaryIssue: "Braking Efficiency",
		CoachingTip:  "You are over-slowing at Turn 1. Trust the aero and carry 5mph more to the apex.",
	}, "mock"
}

// recent formats up to logLines entries as "[AGENT] msg", newest first.
func (g *Generator) recent(log []advisory.LogEntry) []string {
	n := min(len(log), g.logLines)
	lines := make([]string, 0, n)
	for _, e := range log[:n] {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.Agent, e.Msg))
	}
	return lines
}

type reply struct {
	Score        *float64        `json:"score"`
	Verdict      string          `json:"verdict"`
	PrimaryIssue string          `json:"primary_issue"`
	CoachingTip  string          `json:"coaching_tip"`
	ActionPlan   json.RawMessage `json:"action_plan"`
}

func parseReport(text string) (Report, error) {
	r, err := backend.ParseJSON[reply](text)
	if err != nil {
		return Report{}, err
	}
	if r.Score == nil || strings.TrimSpace(r.Verdict) == "" {
		return Report{}, fmt.Errorf("%w: score and verdict are required", backend.ErrMalformed)
	}

	out := Report{
		Score:        int(math.Max(0, math.Min(100, math.Round(*r.Score)))),
		Verdict:      strings.TrimSpace(r.Verdict),
		PrimaryIssue: strings.TrimSpace(r.PrimaryIssue),
		CoachingTip:  strings.TrimSpace(r.CoachingTip),
	}
	if len(r.ActionPlan) > 0 && string(r.ActionPlan) != "null" {
		var steps []string
		if err := json.Unmarshal(r.ActionPlan, &steps); err != nil {
			var single string
			if err2 := json.Unmarshal(r.ActionPlan, &single); err2 != nil {
				return Report{}, fmt.Errorf("%w: action_plan: %w", backend.ErrMalformed, err)
			}
			steps = []string{single}
		}
		for _, s := range steps {
			if s = strings.TrimSpace(s); s != "" {
				out.ActionPlan = append(out.ActionPlan, s)
				out.Plan = append(out.Plan, Emphasis(s))
			}
		}
	}
	return out, nil
}
