// Package telemetry produces vehicle telemetry frames from a replay buffer or
// a closed-form synthetic waveform.
package telemetry

// Mode names the active production mode of a Stream.
type Mode string

const (
	ModeSynthetic Mode = "synthetic"
	ModeReplay    Mode = "replay"
)

// Gear labels.
const (
	GearNeutral = "N"
)

// Frame is one sampled snapshot of vehicle telemetry.
type Frame struct {
	Speed    float64 `json:"speed"`    // mph, >= 0
	RPM      float64 `json:"rpm"`      // >= 0
	Throttle float64 `json:"throttle"` // 0..100
	Brake    float64 `json:"brake"`    // 0..100
	LatG     float64 `json:"lat_g"`
	LongG    float64 `json:"long_g"`
	Gear     string  `json:"gear"`
}

// gear thresholds on rpm/speed, highest ratio first.
var gearRatios = []struct {
	above float64
	gear  string
}{
	{150, "1"},
	{110, "2"},
	{80, "3"},
	{60, "4"},
	{45, "5"},
}

// Gear derives the gear from speed and rpm. It is pure.
func Gear(speed, rpm float64) string {
	if speed < 1 || rpm < 800 {
		return GearNeutral
	}
	ratio := rpm / speed
	for _, r := range gearRatios {
		if ratio > r.above {
			return r.gear
		}
	}
	return "6"
}
