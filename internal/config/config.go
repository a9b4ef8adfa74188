// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file, a .env file and PITWALL_ env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Speech mute policies.
const (
	MutePolicyVisualCore = "visual-core"
	MutePolicyQuietEdge  = "quiet-edge"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Session timers.
	TelemetryIntervalMS int `koanf:"telemetry_interval_ms"`
	EventIntervalMS     int `koanf:"event_interval_ms"`
	CoachIntervalMS     int `koanf:"coach_interval_ms"`

	// SpeedHistorySize is the length of the speed ring buffer.
	SpeedHistorySize int `koanf:"speed_history_size"`

	// LogCapacity caps the advisory log.
	LogCapacity int `koanf:"log_capacity"`

	// AdvisoryQueueSize bounds the queue between producers and the dispatcher.
	AdvisoryQueueSize int `koanf:"advisory_queue_size"`

	// DebriefMinEntries is the log length at which stopping a session runs a debrief.
	DebriefMinEntries int `koanf:"debrief_min_entries"`
	// DebriefLogLines is how many recent log lines go to the debrief backend.
	DebriefLogLines int `koanf:"debrief_log_lines"`

	// GeminiAPIKey enables the live backend. Empty means mock only.
	GeminiAPIKey string `koanf:"gemini_api_key"`
	// GeminiBaseURL overrides the API endpoint (tests, proxies).
	GeminiBaseURL string `koanf:"gemini_base_url"`
	CoachModel    string `koanf:"coach_model"`
	DebriefModel  string `koanf:"debrief_model"`

	CoachTimeoutMS   int `koanf:"coach_timeout_ms"`
	DebriefTimeoutMS int `koanf:"debrief_timeout_ms"`

	MockCoachLatencyMS   int `koanf:"mock_coach_latency_ms"`
	MockDebriefLatencyMS int `koanf:"mock_debrief_latency_ms"`

	// VoiceEnabled is the initial audio toggle.
	VoiceEnabled        bool   `koanf:"voice_enabled"`
	SpeechDedupWindowMS int    `koanf:"speech_dedup_window_ms"`
	SpeechBufferMS      int    `koanf:"speech_buffer_ms"`
	SpeechMutePolicy    string `koanf:"speech_mute_policy"`

	// RandomSeed seeds Nano and mock draws. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`

	// PedagogyFile replaces the built-in pedagogy base with a YAML file.
	PedagogyFile string `koanf:"pedagogy_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		TelemetryIntervalMS:  50,
		EventIntervalMS:      800,
		CoachIntervalMS:      4000,
		SpeedHistorySize:     40,
		LogCapacity:          10,
		AdvisoryQueueSize:    64,
		DebriefMinEntries:    4,
		DebriefLogLines:      15,
		CoachModel:           "gemini-2.0-flash-001",
		DebriefModel:         "gemini-2.5-pro",
		CoachTimeoutMS:       8000,
		DebriefTimeoutMS:     60000,
		MockCoachLatencyMS:   800,
		MockDebriefLatencyMS: 1500,
		SpeechDedupWindowMS:  8000,
		SpeechBufferMS:       3000,
		SpeechMutePolicy:     MutePolicyVisualCore,
	}
}

// Validate checks the invariants the session engine relies on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	positive := map[string]int{
		"telemetry_interval_ms": c.TelemetryIntervalMS,
		"event_interval_ms":     c.EventIntervalMS,
		"coach_interval_ms":     c.CoachIntervalMS,
		"speed_history_size":    c.SpeedHistorySize,
		"log_capacity":          c.LogCapacity,
		"advisory_queue_size":   c.AdvisoryQueueSize,
		"debrief_log_lines":     c.DebriefLogLines,
		"coach_timeout_ms":      c.CoachTimeoutMS,
		"debrief_timeout_ms":    c.DebriefTimeoutMS,
	}
	for key, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, key, v)
		}
	}
	if c.MockCoachLatencyMS < 0 || c.MockDebriefLatencyMS < 0 || c.SpeechDedupWindowMS < 0 || c.SpeechBufferMS < 0 || c.DebriefMinEntries < 0 {
		return fmt.Errorf("%w: latencies, windows and thresholds must not be negative", ErrInvalidConfig)
	}
	switch c.SpeechMutePolicy {
	case MutePolicyVisualCore, MutePolicyQuietEdge:
	default:
		return fmt.Errorf("%w: unknown speech_mute_policy %q", ErrInvalidConfig, c.SpeechMutePolicy)
	}
	return nil
}

// Ms converts a millisecond setting to a duration.
func Ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
