package speech

import (
	"strings"
	"sync"

	"github.com/okian/pitwall/internal/domain/advisory"
)

// Voice is a synthesizer voice reported by a client.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// Selector picks a voice from a list.
type Selector func(voices []Voice) (Voice, bool)

func find(pred func(Voice) bool) Selector {
	return func(voices []Voice) (Voice, bool) {
		for _, v := range voices {
			if pred(v) {
				return v, true
			}
		}
		return Voice{}, false
	}
}

// NameContains selects the first voice whose name contains all parts.
func NameContains(parts ...string) Selector {
	return find(func(v Voice) bool {
		for _, p := range parts {
			if !strings.Contains(v.Name, p) {
				return false
			}
		}
		return true
	})
}

// LangIs selects the first voice with exactly lang.
func LangIs(lang string) Selector {
	return find(func(v Voice) bool { return v.Lang == lang })
}

// LangNamed selects the first voice with lang whose name contains part.
func LangNamed(lang, part string) Selector {
	return find(func(v Voice) bool { return v.Lang == lang && strings.Contains(v.Name, part) })
}

// LangContains selects the first voice whose lang contains s.
func LangContains(s string) Selector {
	return find(func(v Voice) bool { return strings.Contains(v.Lang, s) })
}

// First selects the first voice.
func First() Selector {
	return func(voices []Voice) (Voice, bool) {
		if len(voices) == 0 {
			return Voice{}, false
		}
		return voices[0], true
	}
}

// Profile is the persona voice configuration.
type Profile struct {
	Rate  float64
	Pitch float64
	Chain []Selector
}

// Choice is a resolved persona voice. Voice is empty when nothing matched;
// rate and pitch still apply.
type Choice struct {
	Voice Voice
	Rate  float64
	Pitch float64
}

// DefaultProfiles is the persona table.
func DefaultProfiles() map[advisory.Agent]Profile {
	return map[advisory.Agent]Profile{
		advisory.AgentAJ: {Rate: 1.1, Pitch: 1.0, Chain: []Selector{
			NameContains("Google US English"),
			LangNamed("en-US", "Male"),
			LangIs("en-US"),
		}},
		advisory.AgentRoss: {Rate: 1.0, Pitch: 0.95, Chain: []Selector{
			NameContains("Google UK English Male"),
			NameContains("Great Britain", "Male"),
			LangIs("en-GB"),
		}},
		advisory.AgentNano: {Rate: 1.25, Pitch: 1.1, Chain: []Selector{
			NameContains("Google US English"),
			First(),
		}},
		advisory.AgentGemini: {Rate: 1.0, Pitch: 1.0},
		advisory.AgentSystem: {Rate: 1.0, Pitch: 1.0},
	}
}

var fallbackChain = []Selector{LangContains("en-US"), First()}

// Voices resolves persona profiles against the voice list once and caches the
// result until a different list is reported.
type Voices struct {
	mu       sync.RWMutex
	profiles map[advisory.Agent]Profile
	key      string
	resolved map[advisory.Agent]Choice
}

// NewVoices returns a table over profiles (DefaultProfiles when nil).
func NewVoices(profiles map[advisory.Agent]Profile) *Voices {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	v := &Voices{profiles: profiles}
	v.resolved = v.resolve(nil)
	return v
}

// Resolve runs the selector chains over voices. It reports false when the
// list matches the one already cached and no work was done.
func (t *Voices) Resolve(voices []Voice) bool {
	key := fingerprint(voices)
	t.mu.Lock()
	defer t.mu.Unlock()
	if key == t.key && t.key != "" {
		return false
	}
	t.key = key
	t.resolved = t.resolve(voices)
	return true
}

func (t *Voices) resolve(voices []Voice) map[advisory.Agent]Choice {
	out := make(map[advisory.Agent]Choice, len(t.profiles))
	for agent, p := range t.profiles {
		c := Choice{Rate: p.Rate, Pitch: p.Pitch}
		if v, ok := pick(p.Chain, voices); ok {
			c.Voice = v
		} else if v, ok := pick(fallbackChain, voices); ok {
			c.Voice = v
		}
		out[agent] = c
	}
	return out
}

// Choose returns the cached choice for agent.
func (t *Voices) Choose(agent advisory.Agent) Choice {
	t.mu.RLock()
	c, ok := t.resolved[agent]
	t.mu.RUnlock()
	if !ok {
		return Choice{Rate: 1, Pitch: 1}
	}
	return c
}

func pick(chain []Selector, voices []Voice) (Voice, bool) {
	for _, sel := range chain {
		if v, ok := sel(voices); ok {
			return v, true
		}
	}
	return Voice{}, false
}

func fingerprint(voices []Voice) string {
	var b strings.Builder
	for _, v := range voices {
		b.WriteString(v.Name)
		b.WriteByte(0)
		b.WriteString(v.Lang)
		b.WriteByte(0)
	}
	return b.String()
}
