package advisory_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAdvisoryBasics(t *testing.T) {
	Convey("Given agents and priorities", t, func() {
		So(advisory.AgentNano.Valid(), ShouldBeTrue)
		So(advisory.Agent("PIT").Valid(), ShouldBeFalse)
		So(advisory.ParsePriority("high"), ShouldEqual, advisory.PriorityHigh)
		So(advisory.ParsePriority("urgent"), ShouldEqual, advisory.PriorityNormal)
		So(advisory.ParsePriority(""), ShouldEqual, advisory.PriorityNormal)
	})
}

func TestStyleFor(t *testing.T) {
	Convey("Given advisories from each agent", t, func() {
		Convey("Then normal priority uses the agent style", func() {
			s := advisory.StyleFor(advisory.New(advisory.AgentAJ, "CREW CHIEF", "go", advisory.PriorityNormal))
			So(s.Color, ShouldEqual, "text-purple-700")
			So(advisory.StyleFor(advisory.New(advisory.AgentNano, "EDGE_TPU", "x", advisory.PriorityNormal)).Border, ShouldEqual, "border-emerald-200")
		})

		Convey("Then high priority overrides to the alert style", func() {
			s := advisory.StyleFor(advisory.New(advisory.AgentRoss, "TELEMETRY", "brake", advisory.PriorityHigh))
			So(s.Border, ShouldEqual, "border-red-300")
			So(s.Color, ShouldEqual, "text-red-700 font-bold")
		})

		Convey("Then an unknown agent falls back to the default style", func() {
			s := advisory.StyleFor(advisory.Advisory{Agent: "PIT", Priority: advisory.PriorityNormal})
			So(s.Background, ShouldEqual, "bg-white shadow-sm")
		})
	})
}

func TestLog(t *testing.T) {
	Convey("Given a log with the default capacity", t, func() {
		log := advisory.NewLog(advisory.DefaultCapacity)
		now := time.Date(2024, 5, 1, 13, 4, 5, 678_000_000, time.UTC)

		Convey("When 12 advisories are appended", func() {
			for i := 0; i < 12; i++ {
				log.Append(advisory.New(advisory.AgentNano, "EDGE_TPU", fmt.Sprintf("m%d", i), advisory.PriorityNormal), now)
			}
			entries := log.Entries()

			Convey("Then it keeps the 10 newest, newest first", func() {
				So(log.Len(), ShouldEqual, 10)
				So(entries[0].Msg, ShouldEqual, "m11")
				So(entries[9].Msg, ShouldEqual, "m2")
			})

			Convey("And entries carry an id and an HH:MM:SS.mmm time", func() {
				So(entries[0].ID, ShouldNotBeEmpty)
				So(entries[0].ID, ShouldNotEqual, entries[1].ID)
				So(entries[0].Time, ShouldEqual, "13:04:05.678")
			})
		})

		Convey("When the log is reset with a seed entry", func() {
			log.Append(advisory.New(advisory.AgentAJ, "CREW CHIEF", "old", advisory.PriorityNormal), now)
			log.Reset(advisory.SessionStarted, advisory.StatusStyle, now)

			Convey("Then only the seed remains with the status style", func() {
				entries := log.Entries()
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Msg, ShouldEqual, "Session started. Telemetry stream active.")
				So(entries[0].Style, ShouldResemble, advisory.StatusStyle)
			})
		})

		Convey("When Entries is mutated by the caller", func() {
			log.Append(advisory.New(advisory.AgentAJ, "CREW CHIEF", "keep", advisory.PriorityNormal), now)
			log.Entries()[0].Msg = "changed"

			Convey("Then the log is unaffected", func() {
				So(log.Entries()[0].Msg, ShouldEqual, "keep")
			})
		})

		Convey("When an entry is encoded", func() {
			e := log.Append(advisory.New(advisory.AgentRoss, "TELEMETRY", "smooth", advisory.PriorityHigh), now)
			raw, err := json.Marshal(e)
			So(err, ShouldBeNil)

			Convey("Then advisory fields are flattened", func() {
				var m map[string]any
				So(json.Unmarshal(raw, &m), ShouldBeNil)
				So(m["agent"], ShouldEqual, "ROSS")
				So(m["priority"], ShouldEqual, "high")
				So(m["style"], ShouldNotBeNil)
			})
		})
	})
}
