package advisory

// Style is the rendering tag attached to a log entry.
type Style struct {
	Color      string `json:"color"`
	Border     string `json:"border"`
	Background string `json:"background"`
}

var (
	defaultStyle = Style{Color: "text-gray-600", Border: "border-gray-200", Background: "bg-white shadow-sm"}

	agentStyles = map[Agent]Style{
		AgentAJ:     {Color: "text-purple-700", Border: "border-purple-200", Background: "bg-purple-50 shadow-sm"},
		AgentRoss:   {Color: "text-blue-700", Border: "border-blue-200", Background: "bg-blue-50 shadow-sm"},
		AgentGemini: {Color: "text-amber-700", Border: "border-amber-200", Background: "bg-amber-50 shadow-sm"},
		AgentNano:   {Color: "text-emerald-700", Border: "border-emerald-200", Background: "bg-emerald-50 shadow-sm"},
		AgentSystem: {Color: "text-gray-500", Border: "border-gray-200", Background: "bg-gray-50 shadow-sm"},
	}

	alertStyle = Style{Color: "text-red-700 font-bold", Border: "border-red-300", Background: "bg-red-50 shadow-md"}

	// StatusStyle marks the dim entry that seeds a fresh session log.
	StatusStyle = Style{Color: "text-gray-400", Border: "border-gray-600", Background: "bg-gray-900/50"}
)

// StyleFor returns the agent style, with high priority overriding to the alert style.
func StyleFor(a Advisory) Style {
	if a.High() {
		return alertStyle
	}
	if s, ok := agentStyles[a.Agent]; ok {
		return s
	}
	return defaultStyle
}
