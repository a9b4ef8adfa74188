package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given the documentation routes", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		serveReq := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		convey.Convey("When fetching /openapi.yaml", func() {
			w := serveReq(http.MethodGet, "/openapi.yaml")

			convey.Convey("Then the embedded document should be returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldEqual, len(document))
			})
		})

		convey.Convey("When fetching /api-docs", func() {
			w := serveReq(http.MethodGet, "/api-docs")

			convey.Convey("Then the ReDoc page should point at the document", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Pitwall API Docs")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Redoc.init('/openapi.yaml'")
			})
		})

		convey.Convey("When probing with HEAD", func() {
			w := serveReq(http.MethodHead, "/openapi.yaml")

			convey.Convey("Then headers come back without a body", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When posting to a documentation route", func() {
			w := serveReq(http.MethodPost, "/api-docs")

			convey.Convey("Then it should be refused with an Allow header", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
				convey.So(w.Header().Get("Allow"), convey.ShouldEqual, "GET, HEAD")
			})
		})

		convey.Convey("Then the document should describe every session route", func() {
			body := string(document)
			for _, path := range []string{"/session:", "/session/start:", "/session/stop:", "/replay:", "/audio:", "/audio/test:", "/debrief:", "/pedagogy:", "/feed:", "/stats:"} {
				convey.So(body, convey.ShouldContainSubstring, path)
			}
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		convey.Convey("Then registering should panic", func() {
			convey.So(func() {
				Register(context.Background(), nil)
			}, convey.ShouldPanic)
		})
	})
}
