// Package nano derives discrete driving events from a telemetry frame.
package nano

import (
	"math/rand"
	"sync"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/telemetry"
)

// Event messages. Underscores are kept for the visual log; speech strips them.
const (
	EventApexEntry    = "APEX_ENTRY: HIGH_LOAD"
	EventCornerExit   = "CORNER_EXIT: MAX_GRIP"
	EventBrakingLimit = "BRAKING: THRESHOLD_LIMIT"
	EventStraightVmax = "STRAIGHT: VMAX_PEAK"
	EventShiftPoint   = "ENGINE: SHIFT_POINT"
	EventApexMissed   = "OPPORTUNITY: TRUE_APEX_MISSED"
	EventPersonalBest = "SECTOR_1: PERSONAL_BEST"
	Role              = "EDGE_TPU"
)

// Draw thresholds.
const (
	apexMissedDraw   = 0.9
	personalBestDraw = 0.95
	defaultGate      = 0.7
)

// Option configures a Detector.
type Option func(*Detector)

// WithRand injects the random source.
func WithRand(rng *rand.Rand) Option {
	return func(d *Detector) {
		if rng != nil {
			d.rng = rng
		}
	}
}

// WithGate sets the draw threshold an emission must exceed (0.7 emits ~30%).
func WithGate(gate float64) Option {
	return func(d *Detector) {
		if gate >= 0 && gate < 1 {
			d.gate = gate
		}
	}
}

// Detector applies threshold rules plus random novelty events and a
// probabilistic gate, emitting at most one NANO advisory per call.
type Detector struct {
	mu   sync.Mutex
	rng  *rand.Rand
	gate float64
}

// NewDetector creates a detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // not security sensitive
		gate: defaultGate,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// candidates returns the events whose conditions hold for f, novelty draws
// included. Both novelty draws happen on every call.
func (d *Detector) candidates(f telemetry.Frame) []string {
	var events []string
	if f.LatG > 1.3 {
		events = append(events, EventApexEntry)
	}
	if f.LatG < -1.3 {
		events = append(events, EventCornerExit)
	}
	if f.Brake > 85 {
		events = append(events, EventBrakingLimit)
	}
	if f.Throttle > 98 && f.Speed > 140 {
		events = append(events, EventStraightVmax)
	}
	if f.RPM > 7800 {
		events = append(events, EventShiftPoint)
	}
	if d.rng.Float64() > apexMissedDraw {
		events = append(events, EventApexMissed)
	}
	if d.rng.Float64() > personalBestDraw {
		events = append(events, EventPersonalBest)
	}
	return events
}

// Detect returns one advisory chosen uniformly among the candidates when the
// gate passes. Priority is always normal.
func (d *Detector) Detect(f telemetry.Frame) (advisory.Advisory, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	events := d.candidates(f)
	if len(events) == 0 || d.rng.Float64() <= d.gate {
		return advisory.Advisory{}, false
	}
	msg := events[d.rng.Intn(len(events))]
	return advisory.New(advisory.AgentNano, Role, msg, advisory.PriorityNormal), true
}
