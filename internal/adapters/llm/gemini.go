// Package llm implements the generative backend on the Gemini API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/pkg/logger"
)

// Gemini implements backend.Backend with google.golang.org/genai.
type Gemini struct {
	client     *genai.Client
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

var _ backend.Backend = (*Gemini)(nil)

// New creates a Gemini backend. An empty key returns ErrNoCredential so
// callers can stay on the mock paths.
func New(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	g := &Gemini{logger: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate runs generateContent with a JSON response type. The system
// prompt, when present, goes in as the system instruction.
func (g *Gemini) Generate(ctx context.Context, req backend.Request) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		kind := classify(ctx, err)
		g.logger.Debug(ctx, "generate failed",
			logger.String("model", req.Model),
			logger.String("kind", kind.Error()),
			logger.Error(err))
		return "", fmt.Errorf("%w: %w", kind, err)
	}
	return replyText(resp), nil
}

// classify maps a call failure onto the backend error kinds.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return backend.ErrTimeout
	}
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return backend.ErrClient
	}
	return backend.ErrTransport
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
