// Package advisory holds the coaching message types and the bounded session log.
package advisory

// Agent names a persona.
type Agent string

const (
	AgentAJ     Agent = "AJ"
	AgentRoss   Agent = "ROSS"
	AgentGemini Agent = "GEMINI"
	AgentNano   Agent = "NANO"
	AgentSystem Agent = "SYSTEM"
)

// Valid reports whether a is a known persona.
func (a Agent) Valid() bool {
	switch a {
	case AgentAJ, AgentRoss, AgentGemini, AgentNano, AgentSystem:
		return true
	}
	return false
}

// Priority is normal or high.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps anything other than "high" to normal.
func ParsePriority(s string) Priority {
	if Priority(s) == PriorityHigh {
		return PriorityHigh
	}
	return PriorityNormal
}

// Advisory is a short message attributed to a persona.
type Advisory struct {
	Agent    Agent    `json:"agent"`
	Role     string   `json:"role"`
	Msg      string   `json:"msg"`
	Priority Priority `json:"priority"`
}

// New builds an advisory.
func New(agent Agent, role, msg string, priority Priority) Advisory {
	return Advisory{Agent: agent, Role: role, Msg: msg, Priority: priority}
}

// High reports whether a bypasses the speech buffer.
func (a Advisory) High() bool { return a.Priority == PriorityHigh }

// System advisories raised by the session engine.
var (
	SessionStarted = New(AgentSystem, "STATUS", "Session started. Telemetry stream active.", PriorityNormal)
	CoachWarning   = New(AgentSystem, "WARNING", "Connection unstable. Switching to cached pedagogy.", PriorityNormal)
	IngestFailed   = New(AgentSystem, "ERROR", "Failed to parse CSV. Check format.", PriorityHigh)
	AudioCheck     = New(AgentAJ, "CREW CHIEF", "Audio check. Systems nominal.", PriorityHigh)
)
