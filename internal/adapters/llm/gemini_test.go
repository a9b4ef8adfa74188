package llm_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitwall/internal/adapters/llm"
	"github.com/okian/pitwall/internal/domain/backend"
)

type fakeGemini struct {
	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
	seen   []string
	paths  []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.seen = append(f.seen, string(raw))
	f.paths = append(f.paths, r.URL.Path)
	status, body, delay := f.status, f.body, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func reply(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + quote(text) + `}]}}]}`
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func TestGemini(t *testing.T) {
	Convey("Given a Gemini backend against a fake endpoint", t, func() {
		fake := &fakeGemini{status: http.StatusOK}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		g, err := llm.New(context.Background(), "test-key", llm.WithBaseURL(srv.URL+"/"))
		So(err, ShouldBeNil)

		req := backend.Request{Model: "gemini-2.0-flash-001", System: "be brief", User: "Telemetry: Speed 120 MPH"}

		Convey("When the service answers", func() {
			fake.body = reply(`{"agent":"AJ","msg":"Push"}`)
			text, err := g.Generate(context.Background(), req)

			Convey("Then the candidate text is returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, `{"agent":"AJ","msg":"Push"}`)
			})

			Convey("Then the request carries the model, system instruction and JSON mime type", func() {
				So(fake.paths[0], ShouldContainSubstring, "gemini-2.0-flash-001:generateContent")
				So(fake.seen[0], ShouldContainSubstring, "be brief")
				So(fake.seen[0], ShouldContainSubstring, "application/json")
				So(fake.seen[0], ShouldContainSubstring, "Telemetry: Speed 120 MPH")
			})
		})

		Convey("When the service rejects the key", func() {
			fake.status = http.StatusForbidden
			fake.body = `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`
			_, err := g.Generate(context.Background(), req)

			Convey("Then the failure is client class", func() {
				So(errors.Is(err, backend.ErrClient), ShouldBeTrue)
			})
		})

		Convey("When the service is slow", func() {
			fake.delay = time.Second
			fake.body = reply("{}")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			_, err := g.Generate(ctx, req)

			Convey("Then the failure is a timeout", func() {
				So(errors.Is(err, backend.ErrTimeout), ShouldBeTrue)
			})
		})
	})

	Convey("Given no credential", t, func() {
		_, err := llm.New(context.Background(), "")
		So(errors.Is(err, llm.ErrNoCredential), ShouldBeTrue)
	})
}
