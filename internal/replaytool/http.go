package replaytool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// HTTPClient talks to a pitwall service.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for baseURL with a request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, "", http.StatusOK, nil)
}

// Upload posts a CSV file to /replay as multipart form data and returns the
// number of frames the service accepted.
func (c *HTTPClient) Upload(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(formFileField, filepath.Base(path))
	if err != nil {
		return 0, fmt.Errorf("failed to create form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("failed to close form: %w", err)
	}

	var out struct {
		Frames int `json:"frames"`
	}
	if err := c.call(ctx, http.MethodPost, "/replay", &body, mw.FormDataContentType(), http.StatusOK, &out); err != nil {
		return 0, err
	}
	return out.Frames, nil
}

// Eject drops the installed replay.
func (c *HTTPClient) Eject(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/replay", nil, "", http.StatusNoContent, nil)
}

// Start starts a session.
func (c *HTTPClient) Start(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.call(ctx, http.MethodPost, "/session/start", nil, "", http.StatusOK, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Stop stops the session and returns the debrief, which is nil when the
// session was too short to grade.
func (c *HTTPClient) Stop(ctx context.Context) (*Report, error) {
	var out struct {
		Debrief *Report `json:"debrief"`
	}
	if err := c.call(ctx, http.MethodPost, "/session/stop", nil, "", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Debrief, nil
}

// Session fetches GET /session.
func (c *HTTPClient) Session(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.call(ctx, http.MethodGet, "/session", nil, "", http.StatusOK, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body io.Reader, contentType string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrBadStatus, method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
