package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with pitwall naming", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "pitwall")
				So(manager.subsystem, ShouldEqual, "coach")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "pitwall")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording coaching outcomes", func() {
			before := testutil.ToFloat64(globalManager.coachRequests.WithLabelValues("timeout"))
			RecordCoachRequest("timeout")
			RecordCoachRequest("timeout")

			Convey("Then the labelled counter should move", func() {
				after := testutil.ToFloat64(globalManager.coachRequests.WithLabelValues("timeout"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When a replay is loaded and cleared", func() {
			RecordReplayLoad(true, 120)
			loaded := testutil.ToFloat64(globalManager.replayFrames)
			ClearReplayFrames()

			Convey("Then the buffer gauge should follow", func() {
				So(loaded, ShouldEqual, 120)
				So(testutil.ToFloat64(globalManager.replayFrames), ShouldEqual, 0)
			})
		})

		Convey("When a failed replay load is recorded", func() {
			RecordReplayLoad(true, 7)
			RecordReplayLoad(false, 0)

			Convey("Then the gauge should keep the previous buffer", func() {
				So(testutil.ToFloat64(globalManager.replayFrames), ShouldEqual, 7)
			})
		})

		Convey("When the session toggles", func() {
			SetSessionActive(true)
			active := testutil.ToFloat64(globalManager.sessionActive)
			SetSessionActive(false)

			Convey("Then the gauge should flip", func() {
				So(active, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.sessionActive), ShouldEqual, 0)
			})
		})

		Convey("When recording the rest of the pipeline", func() {
			So(func() {
				RecordTelemetryFrame("synthetic")
				RecordNanoEvent()
				RecordCoachLatency(812)
				RecordAdvisoryDispatched("AJ", "high")
				RecordAdvisoryQueueDrop()
				RecordSpeechUtterance("ROSS")
				RecordSpeechSuppressed("duplicate")
				RecordDebrief("mock", 1500)
				RecordDebrief("skipped", 0)
				UpdateFeedClients(3)
				RecordFeedDrop()
				RecordHTTPRequest("/session", "GET", "200")
				RecordHTTPRequestDuration("/session", "GET", "200", 1.5)
				RecordHTTPError("/session", "conflict", "low")
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("When the periodic gauges are updated", func() {
			UpdateAdvisoryQueueLength(5)
			UpdateSystemMemoryUsage(2048)
			UpdateSystemGoroutineCount(12)

			Convey("Then they should hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.advisoryQueueLength), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("Then it should gather pitwall families", func() {
			RecordNanoEvent()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			found := false
			for _, f := range families {
				if f.GetName() == "pitwall_coach_nano_events_total" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
