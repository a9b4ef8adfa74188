package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/internal/domain/dispatch"
	"github.com/okian/pitwall/internal/domain/speech"
	. "github.com/smartystreets/goconvey/convey"
)

// orderSpy records whether the log already held the advisory when speech ran.
type orderSpy struct {
	log       *advisory.Log
	sawInLog  []bool
	announced int
}

func (p *orderSpy) Announce(_ context.Context, adv advisory.Advisory) bool {
	p.announced++
	entries := p.log.Entries()
	p.sawInLog = append(p.sawInLog, len(entries) > 0 && entries[0].Msg == adv.Msg)
	return true
}

type countingSpeaker struct{ spoken []speech.Utterance }

func (c *countingSpeaker) Cancel(context.Context) error { return nil }
func (c *countingSpeaker) Speak(_ context.Context, u speech.Utterance) error {
	c.spoken = append(c.spoken, u)
	return nil
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher", t, func() {
		ctx := context.Background()
		log := advisory.NewLog(10)
		now := time.Date(2024, 1, 1, 9, 30, 0, 250_000_000, time.UTC)

		Convey("When an advisory is dispatched", func() {
			spy := &orderSpy{log: log}
			d := dispatch.New(spy, log, dispatch.WithClock(func() time.Time { return now }))
			entry := d.Dispatch(ctx, advisory.New(advisory.AgentAJ, "CREW CHIEF", "Eyes up.", advisory.PriorityNormal))

			Convey("Then speech runs before the log append", func() {
				So(spy.announced, ShouldEqual, 1)
				So(spy.sawInLog, ShouldResemble, []bool{false})
				So(log.Len(), ShouldEqual, 1)
				So(entry.Time, ShouldEqual, "09:30:00.250")
				So(entry.Style.Color, ShouldEqual, "text-purple-700")
			})
		})

		Convey("When suppressed advisories are dispatched", func() {
			spk := &countingSpeaker{}
			ann := speech.NewAnnouncer(speech.NewPolicy(speech.WithEnabled(true)), nil, spk,
				speech.WithClock(func() time.Time { return now }))
			d := dispatch.New(ann, log, dispatch.WithClock(func() time.Time { return now }))

			d.Dispatch(ctx, advisory.New(advisory.AgentAJ, "CREW CHIEF", "Same.", advisory.PriorityNormal))
			d.Dispatch(ctx, advisory.New(advisory.AgentAJ, "CREW CHIEF", "Same.", advisory.PriorityNormal))
			d.Dispatch(ctx, advisory.New(advisory.AgentGemini, "CORE", "Muted.", advisory.PriorityHigh))

			Convey("Then every advisory is logged but only one is spoken", func() {
				So(log.Len(), ShouldEqual, 3)
				So(spk.spoken, ShouldHaveLength, 1)
				So(log.Entries()[0].Style.Border, ShouldEqual, "border-red-300")
			})
		})

		Convey("When no speech sink is wired", func() {
			d := dispatch.New(nil, log)
			d.Dispatch(ctx, advisory.New(advisory.AgentNano, "EDGE_TPU", "x", advisory.PriorityNormal))

			Convey("Then the log still receives the entry", func() {
				So(log.Len(), ShouldEqual, 1)
			})
		})
	})
}
