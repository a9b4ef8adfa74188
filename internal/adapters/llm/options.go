package llm

import (
	"net/http"

	"github.com/okian/pitwall/pkg/logger"
)

// Option configures a Gemini backend.
type Option func(*Gemini)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(g *Gemini) { g.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gemini) { g.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gemini) {
		if l != nil {
			g.logger = l
		}
	}
}
