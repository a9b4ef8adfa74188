package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/speech"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []speech.Utterance
	cancels int
	fail    error
}

func (r *recordingSpeaker) Cancel(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
	return nil
}

func (r *recordingSpeaker) Speak(_ context.Context, u speech.Utterance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.spoken = append(r.spoken, u)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAnnouncer(t *testing.T) {
	Convey("Given an announcer over a recording speaker", t, func() {
		ctx := context.Background()
		rec := &recordingSpeaker{}
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		a := speech.NewAnnouncer(speech.NewPolicy(speech.WithEnabled(true)), speech.NewVoices(nil), rec, speech.WithClock(clock.Now))

		Convey("When a NANO event is announced", func() {
			ok := a.Announce(ctx, advisory.New(advisory.AgentNano, "EDGE_TPU", "CORNER_EXIT: MAX_GRIP", advisory.PriorityNormal))

			Convey("Then underscores become spaces and the persona rate applies", func() {
				So(ok, ShouldBeTrue)
				So(rec.spoken, ShouldHaveLength, 1)
				So(rec.spoken[0].Text, ShouldEqual, "CORNER EXIT: MAX GRIP")
				So(rec.spoken[0].Rate, ShouldEqual, 1.25)
				So(rec.spoken[0].Pitch, ShouldEqual, 1.1)
				So(rec.cancels, ShouldEqual, 1)
			})
		})

		Convey("When the same text is announced twice quickly", func() {
			msg := advisory.New(advisory.AgentAJ, "CREW CHIEF", "Good pace. Keep the momentum up.", advisory.PriorityNormal)
			a.Announce(ctx, msg)
			clock.Advance(4 * time.Second)
			a.Announce(ctx, msg)

			Convey("Then exactly one utterance reaches the speaker", func() {
				So(rec.spoken, ShouldHaveLength, 1)
			})
		})

		Convey("When the speaker fails", func() {
			rec.fail = errors.New("no synth")
			ok := a.Announce(ctx, advisory.New(advisory.AgentAJ, "CREW CHIEF", "x", advisory.PriorityNormal))

			Convey("Then Announce reports false", func() {
				So(ok, ShouldBeFalse)
			})

			Convey("And the failed line does not block what follows", func() {
				rec.fail = nil
				clock.Advance(time.Second)
				other := a.Announce(ctx, advisory.New(advisory.AgentRoss, "TELEMETRY", "y", advisory.PriorityNormal))
				clock.Advance(time.Second)
				same := a.Announce(ctx, advisory.New(advisory.AgentAJ, "CREW CHIEF", "x", advisory.PriorityHigh))

				So(other, ShouldBeTrue)
				So(same, ShouldBeTrue)
				So(rec.spoken, ShouldHaveLength, 2)
			})
		})

		Convey("When audio is switched off", func() {
			a.SetEnabled(ctx, false)

			Convey("Then speech is cancelled and direct lines are dropped", func() {
				So(rec.cancels, ShouldEqual, 1)
				So(a.SpeakDirect(ctx, speech.Engaged), ShouldBeFalse)
				So(a.Enabled(), ShouldBeFalse)
			})
		})

		Convey("When a direct line is spoken with voice on", func() {
			So(a.SpeakDirect(ctx, speech.Engaged), ShouldBeTrue)
			So(rec.spoken[0].Text, ShouldEqual, "System engaged.")
			So(rec.spoken[0].Volume, ShouldEqual, 0.5)
		})

		Convey("When a client reports its voices", func() {
			a.UpdateVoices(ctx, []speech.Voice{
				{Name: "Daniel", Lang: "en-GB"},
				{Name: "Google US English", Lang: "en-US"},
			})
			u := a.Utterance(advisory.New(advisory.AgentRoss, "TELEMETRY", "calm", advisory.PriorityNormal))

			Convey("Then the persona voice is used", func() {
				So(u.Voice, ShouldEqual, "Daniel")
				So(u.Rate, ShouldEqual, 1.0)
				So(u.Pitch, ShouldEqual, 0.95)
			})
		})
	})
}

func TestVoices(t *testing.T) {
	Convey("Given the default voice table", t, func() {
		v := speech.NewVoices(nil)

		Convey("Before any voices are known", func() {
			c := v.Choose(advisory.AgentAJ)

			Convey("Then rate and pitch persist without a voice", func() {
				So(c.Voice.Name, ShouldBeEmpty)
				So(c.Rate, ShouldEqual, 1.1)
				So(c.Pitch, ShouldEqual, 1.0)
			})
		})

		Convey("When resolved against a browser voice list", func() {
			list := []speech.Voice{
				{Name: "Alice", Lang: "it-IT"},
				{Name: "Samantha", Lang: "en-US"},
				{Name: "Microsoft George - English (Great Britain) Male", Lang: "en-GB"},
			}
			changed := v.Resolve(list)

			Convey("Then each persona walks its chain", func() {
				So(changed, ShouldBeTrue)
				So(v.Choose(advisory.AgentAJ).Voice.Name, ShouldEqual, "Samantha")
				So(v.Choose(advisory.AgentRoss).Voice.Name, ShouldContainSubstring, "George")
				So(v.Choose(advisory.AgentNano).Voice.Name, ShouldEqual, "Alice")
				So(v.Choose(advisory.AgentGemini).Voice.Name, ShouldEqual, "Samantha")
			})

			Convey("And the same list is not resolved twice", func() {
				So(v.Resolve(list), ShouldBeFalse)
			})
		})

		Convey("When nothing matches any chain", func() {
			v.Resolve([]speech.Voice{{Name: "Thomas", Lang: "fr-FR"}})

			Convey("Then the first voice is the fallback", func() {
				So(v.Choose(advisory.AgentRoss).Voice.Name, ShouldEqual, "Thomas")
				So(v.Choose(advisory.AgentRoss).Pitch, ShouldEqual, 0.95)
			})
		})

		Convey("When an unknown agent is chosen", func() {
			So(v.Choose("PIT").Rate, ShouldEqual, 1)
		})
	})
}
