package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencedObject matches a JSON object wrapped in a markdown code fence.
var fencedObject = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")

// ParseJSON decodes a model reply into T. Markdown fences and leading chatter
// around a single object are tolerated.
func ParseJSON[T any](reply string) (*T, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrEmpty
	}
	doc := reply
	switch {
	case strings.HasPrefix(reply, "```"):
		if m := fencedObject.FindStringSubmatch(reply); len(m) > 1 {
			doc = m[1]
		}
	case !strings.HasPrefix(reply, "{"):
		first, last := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
		if first != -1 && last > first {
			doc = reply[first : last+1]
		}
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, fmt.Errorf("%w: %w (%s)", ErrMalformed, err, truncate(doc, 200))
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
