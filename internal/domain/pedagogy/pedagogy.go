// Package pedagogy holds the static racing knowledge base passed to the
// generative backend as grounding context.
package pedagogy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Levels.
const (
	LevelNovice       = "Novice"
	LevelIntermediate = "Intermediate"
)

// Entry is one knowledge base record.
type Entry struct {
	ID             string `json:"id" koanf:"id"`
	Level          string `json:"level" koanf:"level"`
	Concept        string `json:"concept" koanf:"concept"`
	Symptom        string `json:"symptom" koanf:"symptom"`
	VirtualTrigger string `json:"virtual_trigger" koanf:"virtual_trigger"`
	Advice         string `json:"advice" koanf:"advice"`
}

// Base is an immutable set of entries.
type Base struct {
	entries []Entry
	doc     string
}

// New validates entries and returns a Base.
func New(entries []Entry) (*Base, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Advice) == "" {
			return nil, fmt.Errorf("%w: entry %d needs id and advice", ErrInvalidEntry, i)
		}
		if e.Level != LevelNovice && e.Level != LevelIntermediate {
			return nil, fmt.Errorf("%w: %s has level %q", ErrInvalidEntry, e.ID, e.Level)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidEntry, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	cp := make([]Entry, len(entries))
	copy(cp, entries)
	raw, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode pedagogy: %w", err)
	}
	return &Base{entries: cp, doc: string(raw)}, nil
}

// Default returns the built-in knowledge base.
func Default() *Base {
	b, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFile reads entries from a YAML (or JSON) file with a top-level
// "entries" list.
func LoadFile(path string) (*Base, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load pedagogy %s: %w", path, err)
	}
	var entries []Entry
	if err := k.UnmarshalWithConf("entries", &entries, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode pedagogy %s: %w", path, err)
	}
	return New(entries)
}

// Entries returns a copy of the entries.
func (b *Base) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// JSON returns the compact JSON document embedded in prompts.
func (b *Base) JSON() string { return b.doc }

// Len returns the number of entries.
func (b *Base) Len() int { return len(b.entries) }

var defaultEntries = []Entry{
	{ID: "NOV_01", Level: LevelNovice, Concept: "Track Usage", Symptom: "Pinching the exit, narrow radius", VirtualTrigger: "lat_g_drop_early",
		Advice: "Use all the track. You are pinching the exit. Unwind the wheel and let the car run free to the curb."},
	{ID: "NOV_02", Level: LevelNovice, Concept: "Vision", Symptom: "Jerky steering inputs, reactive corrections", VirtualTrigger: "high_heading_variance",
		Advice: "Eyes up. You are reacting to the pavement in front of you. Look for the exit before you even turn in."},
	{ID: "NOV_03", Level: LevelNovice, Concept: "Braking Zone Definition", Symptom: "Coasting before braking or braking too early", VirtualTrigger: "long_g_gradual_onset",
		Advice: "Trust your landmarks. Don't coast. Wait for the marker, then transition instantly from gas to brake."},
	{ID: "NOV_04", Level: LevelNovice, Concept: "Threshold Braking", Symptom: "Insufficient deceleration force", VirtualTrigger: "peak_long_g_low",
		Advice: "Hit the pedal harder. You are only using 60% of the braking capacity. Compress the nose immediately."},
	{ID: "NOV_05", Level: LevelNovice, Concept: "Awareness", Symptom: "Blocking faster traffic", VirtualTrigger: "time_delta_loss_on_straight",
		Advice: "Check your mirrors. If a car is pressing, stay on line, lift on the straight, and give a clear point-by."},
	{ID: "INT_01", Level: LevelIntermediate, Concept: "Braking Efficiency", Symptom: "Long braking distance, slow ramp up", VirtualTrigger: "braking_slope_lazy",
		Advice: "Shorten the braking zone. Attack the pedal faster to reach peak G-force instantly, then trail off."},
	{ID: "INT_02", Level: LevelIntermediate, Concept: "Minimum Speed (Pace)", Symptom: "Overslowing at entry", VirtualTrigger: "apex_velocity_low",
		Advice: "Roll more speed. You are overslowing the entry. Trust the grip and carry 5 more mph to the apex."},
	{ID: "INT_03", Level: LevelIntermediate, Concept: "Consistency", Symptom: "High variance in sector times", VirtualTrigger: "sector_variance_high",
		Advice: "Settle down. Stop experimenting with the line. Hit the same marks three laps in a row before pushing harder."},
	{ID: "INT_04", Level: LevelIntermediate, Concept: "Slip Angle", Symptom: "Front tire scrub (Understeer)", VirtualTrigger: "yaw_rate_lower_than_curvature",
		Advice: "You are scrubbing the front tires. Trail brake slightly to pin the nose and help the car rotate."},
	{ID: "INT_05", Level: LevelIntermediate, Concept: "Traffic Management", Symptom: "Stuck in dirty air/traffic", VirtualTrigger: "consistent_low_speed_with_variance",
		Advice: "Don't get stuck in their rhythm. Back off to create a gap for a clean lap, or set up a late-brake pass."},
}
