package speech

import (
	"context"
	"strings"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Utterance is one line handed to a synthesizer.
type Utterance struct {
	Agent  advisory.Agent `json:"agent"`
	Text   string         `json:"text"`
	Voice  string         `json:"voice,omitempty"`
	Lang   string         `json:"lang,omitempty"`
	Rate   float64        `json:"rate"`
	Pitch  float64        `json:"pitch"`
	Volume float64        `json:"volume"`
}

// Speaker is the synthesizer port. Speak is fire-and-forget; an error means
// the utterance did not start.
type Speaker interface {
	Cancel(ctx context.Context) error
	Speak(ctx context.Context, u Utterance) error
}

// Engaged is spoken when a session starts with voice on.
var Engaged = Utterance{Agent: advisory.AgentSystem, Text: "System engaged.", Rate: 1.2, Pitch: 1.0, Volume: 0.5}

// AnnouncerOption configures an Announcer.
type AnnouncerOption func(*Announcer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AnnouncerOption {
	return func(a *Announcer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) AnnouncerOption {
	return func(a *Announcer) {
		if l != nil {
			a.log = l
		}
	}
}

// Announcer runs advisories through the Policy and speaks the allowed ones.
type Announcer struct {
	policy  *Policy
	voices  *Voices
	speaker Speaker
	now     func() time.Time
	log     logger.Logger
}

// NewAnnouncer wires a policy, voice table and speaker.
func NewAnnouncer(policy *Policy, voices *Voices, speaker Speaker, opts ...AnnouncerOption) *Announcer {
	if policy == nil {
		policy = NewPolicy()
	}
	if voices == nil {
		voices = NewVoices(nil)
	}
	a := &Announcer{
		policy:  policy,
		voices:  voices,
		speaker: speaker,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Announce speaks adv if the policy allows it and reports whether it did.
// New speech always pre-empts the utterance in flight.
func (a *Announcer) Announce(ctx context.Context, adv advisory.Advisory) bool {
	now := a.now()
	d := a.policy.Evaluate(adv, now)
	if !d.Speak {
		metrics.RecordSpeechSuppressed(d.Reason)
		a.log.Debug(ctx, "utterance suppressed",
			logger.String("agent", string(adv.Agent)),
			logger.String("reason", d.Reason))
		return false
	}
	if !a.say(ctx, a.Utterance(adv)) {
		return false
	}
	a.policy.Commit(adv.Msg, now)
	return true
}

// SpeakDirect speaks u without consulting the policy, if voice is enabled.
func (a *Announcer) SpeakDirect(ctx context.Context, u Utterance) bool {
	if !a.policy.Enabled() {
		return false
	}
	return a.say(ctx, u)
}

func (a *Announcer) say(ctx context.Context, u Utterance) bool {
	if a.speaker == nil {
		return false
	}
	if err := a.speaker.Cancel(ctx); err != nil {
		a.log.Warn(ctx, "speech cancel failed", logger.Error(err))
	}
	if err := a.speaker.Speak(ctx, u); err != nil {
		a.log.Warn(ctx, "utterance did not start", logger.String("agent", string(u.Agent)), logger.Error(err))
		return false
	}
	metrics.RecordSpeechUtterance(string(u.Agent))
	return true
}

// Utterance builds the spoken form of adv using the persona voice.
func (a *Announcer) Utterance(adv advisory.Advisory) Utterance {
	c := a.voices.Choose(adv.Agent)
	return Utterance{
		Agent:  adv.Agent,
		Text:   strings.ReplaceAll(adv.Msg, "_", " "),
		Voice:  c.Voice.Name,
		Lang:   c.Voice.Lang,
		Rate:   c.Rate,
		Pitch:  c.Pitch,
		Volume: 1,
	}
}

// SetEnabled toggles voice output; turning it off cancels speech in flight.
func (a *Announcer) SetEnabled(ctx context.Context, on bool) {
	a.policy.SetEnabled(on)
	if !on {
		a.Cancel(ctx)
	}
}

// Enabled reports the voice toggle.
func (a *Announcer) Enabled() bool { return a.policy.Enabled() }

// Cancel stops any utterance in flight.
func (a *Announcer) Cancel(ctx context.Context) {
	if a.speaker == nil {
		return
	}
	if err := a.speaker.Cancel(ctx); err != nil {
		a.log.Warn(ctx, "speech cancel failed", logger.Error(err))
	}
}

// UpdateVoices re-resolves the persona table when the list changed.
func (a *Announcer) UpdateVoices(ctx context.Context, voices []Voice) {
	if a.voices.Resolve(voices) {
		a.log.Info(ctx, "voice table resolved", logger.Int("voices", len(voices)))
	}
}

// Reset forgets the last utterance so a new session starts unthrottled.
func (a *Announcer) Reset() { a.policy.Reset() }
