package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic computes frames from wall-clock time using superposed sinusoids.
type Synthetic struct {
	rng *rand.Rand
}

// NewSynthetic returns a generator drawing speed jitter from rng.
// A nil rng is replaced by a clock-seeded source.
func NewSynthetic(rng *rand.Rand) *Synthetic {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // visual jitter only
	}
	return &Synthetic{rng: rng}
}

// Frame returns the synthetic frame for now. Not safe for concurrent use.
func (s *Synthetic) Frame(now time.Time) Frame {
	t := float64(now.UnixNano()) / float64(time.Second)

	speed := math.Max(0, 120+math.Sin(t*0.5)*40+s.rng.Float64()*2)
	rpm := math.Max(800, 4000+math.Sin(t*0.5)*3000)

	return Frame{
		Speed:    speed,
		RPM:      rpm,
		Throttle: (math.Sin(t) + 1) * 50,
		Brake:    (math.Cos(t+2) + 1) * 20,
		LatG:     math.Sin(t*0.8) * 1.5,
		LongG:    math.Cos(t*0.8) * 0.5,
		Gear:     Gear(speed, rpm),
	}
}
