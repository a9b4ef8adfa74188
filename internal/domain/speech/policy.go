// Package speech decides which advisories are spoken and how.
package speech

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
)

// Suppression reasons reported by Evaluate.
const (
	ReasonDisabled  = "disabled"
	ReasonDuplicate = "duplicate"
	ReasonBuffer    = "buffer"
	ReasonMuted     = "muted"
)

// Default timings.
const (
	DefaultDedupWindow = 8 * time.Second
	DefaultBuffer      = 3 * time.Second
)

// MuteMode says when an agent is kept off the speaker.
type MuteMode int

const (
	MuteAlways MuteMode = iota + 1
	MuteUnlessHigh
)

// MuteRules maps agents to their mute mode. Agents not listed are spoken.
type MuteRules map[advisory.Agent]MuteMode

// Mute rule presets.
const (
	PresetVisualCore = "visual-core"
	PresetQuietEdge  = "quiet-edge"
)

// MuteRulesFor returns the named preset.
func MuteRulesFor(name string) (MuteRules, error) {
	switch name {
	case PresetVisualCore:
		return MuteRules{advisory.AgentGemini: MuteAlways, advisory.AgentSystem: MuteAlways}, nil
	case PresetQuietEdge:
		return MuteRules{advisory.AgentNano: MuteUnlessHigh}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func (r MuteRules) muted(a advisory.Advisory) bool {
	switch r[a.Agent] {
	case MuteAlways:
		return true
	case MuteUnlessHigh:
		return !a.High()
	}
	return false
}

// Decision is the outcome of evaluating one advisory.
type Decision struct {
	Speak  bool
	Reason string
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithDedupWindow sets how long an identical text stays suppressed.
func WithDedupWindow(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d >= 0 {
			p.window = d
		}
	}
}

// WithBuffer sets the minimum gap between normal-priority utterances.
func WithBuffer(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d >= 0 {
			p.buffer = d
		}
	}
}

// WithMuteRules sets the mute table.
func WithMuteRules(r MuteRules) PolicyOption {
	return func(p *Policy) {
		if r != nil {
			p.rules = r
		}
	}
}

// WithEnabled sets the initial voice toggle.
func WithEnabled(on bool) PolicyOption {
	return func(p *Policy) { p.enabled = on }
}

// Policy is the rate limiter, deduplicator and priority override in front of
// the speaker. It remembers only the last spoken text and when it was spoken.
type Policy struct {
	mu      sync.Mutex
	enabled bool
	window  time.Duration
	buffer  time.Duration
	rules   MuteRules

	spoken   bool
	lastText string
	lastAt   time.Time
}

// NewPolicy returns a policy using the visual-core mute rules.
func NewPolicy(opts ...PolicyOption) *Policy {
	rules, _ := MuteRulesFor(PresetVisualCore)
	p := &Policy{
		window: DefaultDedupWindow,
		buffer: DefaultBuffer,
		rules:  rules,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate decides whether adv may be spoken at now. It does not touch the
// last-utterance memory; call Commit once the utterance has started.
func (p *Policy) Evaluate(adv advisory.Advisory, now time.Time) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return Decision{Reason: ReasonDisabled}
	}
	since := now.Sub(p.lastAt)
	if p.spoken && adv.Msg == p.lastText && since < p.window {
		return Decision{Reason: ReasonDuplicate}
	}
	if p.spoken && !adv.High() && since < p.buffer {
		return Decision{Reason: ReasonBuffer}
	}
	if p.rules.muted(adv) {
		return Decision{Reason: ReasonMuted}
	}
	return Decision{Speak: true}
}

// Commit records text as the last utterance, started at now.
func (p *Policy) Commit(text string, now time.Time) {
	p.mu.Lock()
	p.spoken = true
	p.lastText = text
	p.lastAt = now
	p.mu.Unlock()
}

// SetEnabled flips the voice toggle.
func (p *Policy) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

// Enabled reports the voice toggle.
func (p *Policy) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Reset forgets the last utterance.
func (p *Policy) Reset() {
	p.mu.Lock()
	p.spoken = false
	p.lastText = ""
	p.lastAt = time.Time{}
	p.mu.Unlock()
}
