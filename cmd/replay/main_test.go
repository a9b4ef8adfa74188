package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pitwall/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestReplayCommands(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given the replay CLI", t, func() {
		var out bytes.Buffer
		root := newRootCmd(&out)

		convey.Convey("When generating a capture", func() {
			path := filepath.Join(t.TempDir(), "lap.csv")
			root.SetArgs([]string{"generate", "--out", path, "--seconds", "2", "--hz", "4", "--seed", "1"})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then the file should hold the frames", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "wrote 8 frames")
				raw, err := os.ReadFile(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldStartWith, "speed_mph,rpm,throttle_pct,brake_pct,lat_g")
			})
		})

		convey.Convey("When uploading to a service", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/replay" || r.Method != http.MethodPost {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(`{"frames":42}`))
			}))
			defer srv.Close()

			path := filepath.Join(t.TempDir(), "lap.csv")
			convey.So(os.WriteFile(path, []byte("speed_mph\n1\n"), 0o600), convey.ShouldBeNil)
			root.SetArgs([]string{"upload", path, "--url", srv.URL})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then the accepted frame count should print", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "replay loaded: 42 frames")
			})
		})

		convey.Convey("When upload is missing its file argument", func() {
			root.SetArgs([]string{"upload"})
			root.SetErr(&bytes.Buffer{})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then cobra should reject it", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
