package coach

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/telemetry"
)

const systemTemplate = `You are the "Antigravity Squad", an AI coaching system for high-speed racing.

*** EXPERT KNOWLEDGE BASE (PEDAGOGY) ***
Use the following specific coaching concepts to ground your advice. If telemetry matches a "virtual_trigger" or "symptom", use the exact "advice" provided in this JSON:
%s
****************************************

Select ONE persona to speak based on the telemetry:
1. AJ (Role: CREW CHIEF): Aggressive, strategic. Uses the PEDAGOGY to correct driving lines and habits.
2. ROSS (Role: TELEMETRY): Technical, calm. Reports on physics (G-force, tires).
3. GEMINI (Role: CORE): Analytical. Synthesizes data.

Input Telemetry: Speed (MPH), RPM, G-Force (Lateral).

Output ONLY a raw JSON object (no markdown) with these keys:
- "agent": "AJ", "ROSS", or "GEMINI"
- "role": "CREW CHIEF", "TELEMETRY", or "CORE"
- "msg": A short (under 10 words) coaching command or observation. Prioritize Pedagogy advice if applicable.
- "priority": "normal" or "high"`

// SystemPrompt renders the persona instructions grounded on p.
func SystemPrompt(p *pedagogy.Base) string {
	return fmt.Sprintf(systemTemplate, p.JSON())
}

// UserPrompt summarizes f with speed and rpm rounded and lateral G to two places.
func UserPrompt(f telemetry.Frame) string {
	return fmt.Sprintf("Telemetry: Speed %d MPH, RPM %d, Lateral G %.2f.",
		int64(math.Round(f.Speed)), int64(math.Round(f.RPM)), f.LatG)
}

var personaRoles = map[advisory.Agent]string{
	advisory.AgentAJ:     RoleCrewChief,
	advisory.AgentRoss:   RoleTelemetry,
	advisory.AgentGemini: RoleCore,
}

type reply struct {
	Agent    string `json:"agent"`
	Role     string `json:"role"`
	Msg      string `json:"msg"`
	Priority string `json:"priority"`
}

// parseAdvice decodes a coaching reply. It returns nil without error when the
// reply names no coaching persona or carries no message.
func parseAdvice(text string) (*advisory.Advisory, error) {
	r, err := backend.ParseJSON[reply](text)
	if err != nil {
		return nil, err
	}
	agent := advisory.Agent(strings.ToUpper(strings.TrimSpace(r.Agent)))
	msg := strings.TrimSpace(r.Msg)
	if !agent.Valid() || msg == "" {
		return nil, nil //nolint:nilnil // nothing to say is not an error
	}
	role, ok := personaRoles[agent]
	if !ok {
		return nil, nil //nolint:nilnil // nothing to say is not an error
	}
	if strings.TrimSpace(r.Role) != "" {
		role = strings.TrimSpace(r.Role)
	}
	adv := advisory.New(agent, role, msg, advisory.ParsePriority(strings.ToLower(strings.TrimSpace(r.Priority))))
	return &adv, nil
}
