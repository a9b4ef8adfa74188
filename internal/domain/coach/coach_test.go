package coach_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/coach"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func reply(text string, err error) backend.Func {
	return func(context.Context, backend.Request) (string, error) { return text, err }
}

func TestMockRules(t *testing.T) {
	Convey("Given the rule-based mock", t, func() {
		Convey("Then speed wins first", func() {
			adv := coach.Mock(telemetry.Frame{Speed: 140, LatG: 1.5, Brake: 50})
			So(adv.Agent, ShouldEqual, advisory.AgentAJ)
			So(adv.Msg, ShouldEqual, "Good pace. Keep the momentum up.")
			So(adv.Priority, ShouldEqual, advisory.PriorityNormal)
		})

		Convey("Then lateral load is checked in both directions", func() {
			adv := coach.Mock(telemetry.Frame{Speed: 100, LatG: -1.2, Brake: 50})
			So(adv.Agent, ShouldEqual, advisory.AgentRoss)
			So(adv.Role, ShouldEqual, "TELEMETRY")
		})

		Convey("Then braking is high priority", func() {
			adv := coach.Mock(telemetry.Frame{Speed: 100, Brake: 31})
			So(adv.Priority, ShouldEqual, advisory.PriorityHigh)
			So(adv.Msg, ShouldEqual, "Braking zone. Compress the pedal.")
		})

		Convey("Then a quiet frame yields nothing", func() {
			So(coach.Mock(telemetry.Frame{Speed: 100, Brake: 30, LatG: 1.1}), ShouldBeNil)
		})
	})
}

func TestAdvisorMockPath(t *testing.T) {
	Convey("Given an advisor without a backend", t, func() {
		a := coach.New(coach.WithMockLatency(10 * time.Millisecond))

		Convey("When advising on a fast frame", func() {
			start := time.Now()
			out := a.Advise(context.Background(), telemetry.Frame{Speed: 150})

			Convey("Then the mock answers after the simulated latency", func() {
				So(a.Live(), ShouldBeFalse)
				So(out.Source, ShouldEqual, coach.SourceMock)
				So(out.Advisory.Agent, ShouldEqual, advisory.AgentAJ)
				So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 10*time.Millisecond)
			})
		})

		Convey("When the context is cancelled during the latency", func() {
			slow := coach.New(coach.WithMockLatency(time.Hour))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			out := slow.Advise(ctx, telemetry.Frame{Speed: 150})

			Convey("Then there is no advisory", func() {
				So(out.Advisory, ShouldBeNil)
				So(out.Source, ShouldEqual, coach.SourceTimeout)
			})
		})
	})
}

func TestAdvisorLivePath(t *testing.T) {
	Convey("Given an advisor with a backend", t, func() {
		frame := telemetry.Frame{Speed: 121.6, RPM: 5432.4, LatG: 1.234, Brake: 50}

		Convey("When the backend answers with a fenced persona reply", func() {
			var seen backend.Request
			b := backend.Func(func(_ context.Context, req backend.Request) (string, error) {
				seen = req
				return "```json\n{\"agent\":\"ROSS\",\"role\":\"TELEMETRY\",\"msg\":\"Trail brake to rotate.\",\"priority\":\"HIGH\"}\n```", nil
			})
			out := coach.New(coach.WithBackend(b), coach.WithModel("m1")).Advise(context.Background(), frame)

			Convey("Then the advisory is live", func() {
				So(out.Source, ShouldEqual, coach.SourceLive)
				So(out.Advisory.Agent, ShouldEqual, advisory.AgentRoss)
				So(out.Advisory.Msg, ShouldEqual, "Trail brake to rotate.")
				So(out.Advisory.Priority, ShouldEqual, advisory.PriorityHigh)
			})

			Convey("And the request carries the rounded telemetry and grounding", func() {
				So(seen.Model, ShouldEqual, "m1")
				So(seen.User, ShouldEqual, "Telemetry: Speed 122 MPH, RPM 5432, Lateral G 1.23.")
				So(seen.System, ShouldContainSubstring, "Antigravity Squad")
				So(seen.System, ShouldContainSubstring, pedagogy.Default().JSON())
			})
		})

		Convey("When the reply omits the role", func() {
			out := coach.New(coach.WithBackend(reply(`{"agent":"gemini","msg":"Consistent sector.","priority":"normal"}`, nil))).Advise(context.Background(), frame)

			Convey("Then the persona role is filled in", func() {
				So(out.Advisory.Agent, ShouldEqual, advisory.AgentGemini)
				So(out.Advisory.Role, ShouldEqual, "CORE")
			})
		})

		Convey("When the reply names an unknown persona or is empty", func() {
			unknown := coach.New(coach.WithBackend(reply(`{"agent":"NANO","msg":"x","priority":"high"}`, nil))).Advise(context.Background(), frame)
			empty := coach.New(coach.WithBackend(reply("", nil))).Advise(context.Background(), frame)
			blank := coach.New(coach.WithBackend(reply(`{"agent":"AJ","msg":"  "}`, nil))).Advise(context.Background(), frame)

			Convey("Then nothing is said", func() {
				So(unknown.Advisory, ShouldBeNil)
				So(empty.Advisory, ShouldBeNil)
				So(blank.Advisory, ShouldBeNil)
				So(empty.Source, ShouldEqual, coach.SourceNone)
			})
		})

		Convey("When the backend rejects the credential", func() {
			err := fmt.Errorf("%w: 403 forbidden", backend.ErrClient)
			out := coach.New(coach.WithBackend(reply("", err))).Advise(context.Background(), frame)

			Convey("Then the rules answer silently", func() {
				So(out.Source, ShouldEqual, coach.SourceClientError)
				So(out.Advisory.Agent, ShouldEqual, advisory.AgentRoss)
			})
		})

		Convey("When the backend is unreachable", func() {
			err := fmt.Errorf("%w: connection reset", backend.ErrTransport)
			out := coach.New(coach.WithBackend(reply("", err))).Advise(context.Background(), frame)

			Convey("Then a single system warning is raised", func() {
				So(out.Source, ShouldEqual, coach.SourceNetworkWarning)
				So(out.Advisory.Agent, ShouldEqual, advisory.AgentSystem)
				So(out.Advisory.Role, ShouldEqual, "WARNING")
				So(out.Advisory.Msg, ShouldEqual, "Connection unstable. Switching to cached pedagogy.")
				So(out.Advisory.Priority, ShouldEqual, advisory.PriorityNormal)
			})
		})

		Convey("When the backend returns garbage", func() {
			out := coach.New(coach.WithBackend(reply("<html>502</html>", nil))).Advise(context.Background(), frame)

			Convey("Then it is treated as a network-class failure", func() {
				So(out.Source, ShouldEqual, coach.SourceNetworkWarning)
			})
		})

		Convey("When the backend hangs past the timeout", func() {
			hang := backend.Func(func(ctx context.Context, _ backend.Request) (string, error) {
				<-ctx.Done()
				return "", errors.New("request aborted")
			})
			start := time.Now()
			out := coach.New(coach.WithBackend(hang), coach.WithTimeout(20*time.Millisecond)).Advise(context.Background(), frame)

			Convey("Then it resolves to no advisory", func() {
				So(out.Advisory, ShouldBeNil)
				So(out.Source, ShouldEqual, coach.SourceTimeout)
				So(time.Since(start), ShouldBeLessThan, time.Second)
			})
		})
	})
}

func TestUserPrompt(t *testing.T) {
	Convey("Given a frame with negative lateral load", t, func() {
		p := coach.UserPrompt(telemetry.Frame{Speed: 0.4, RPM: 799.5, LatG: -0.005})
		So(p, ShouldStartWith, "Telemetry: Speed 0 MPH, RPM 800, Lateral G ")
		So(strings.HasSuffix(p, "."), ShouldBeTrue)
	})
}
