package debrief

import (
	"fmt"
	"strings"

	"github.com/okian/pitwall/internal/domain/pedagogy"
)

const promptTemplate = `ACT AS: Lead Race Engineer (AJ).
TASK: Analyze the telemetry logs from the last session and provide a DETAILED, HIGH-LEVEL POST-RUN DEBRIEF.

SESSION STATS:
Max Speed: %.0f MPH
Avg Speed: %.0f MPH

DRIVER LOGS (Audio Transcripts):
%s

REFERENCE PEDAGOGY:
%s

REQUIREMENTS:
1. Analyze the driver's consistency and aggression.
2. Identify the ROOT CAUSE of the primary issue (not just the symptom).
3. Provide 3 SPECIFIC, ACTIONABLE steps to improve on the next lap.

OUTPUT JSON ONLY:
{
  "score": 0-100 (integer),
  "verdict": "One sentence summary of performance.",
  "primary_issue": "The main technical flaw (e.g. 'Late Braking at Turn 1')",
  "action_plan": ["Step one, wrap key phrases in **bold**.", "Step two.", "Step three."]
}`

// Prompt renders the debrief request.
func Prompt(lines []string, maxSpeed, avgSpeed float64, p *pedagogy.Base) string {
	return fmt.Sprintf(promptTemplate, maxSpeed, avgSpeed, strings.Join(lines, "\n"), p.JSON())
}
