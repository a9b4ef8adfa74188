package debrief

import "strings"

// Span is a run of text in an action step.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold"`
}

// Emphasis splits step on "**" markers. Odd segments are bold; empty
// segments are dropped.
func Emphasis(step string) []Span {
	parts := strings.Split(step, "**")
	spans := make([]Span, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		spans = append(spans, Span{Text: p, Bold: i%2 == 1})
	}
	return spans
}
