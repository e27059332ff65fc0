package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			)

			Convey("Then it should apply the options", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then recording helpers must not panic", func() {
			So(func() {
				RecordEventCreated()
				RecordIssuesAdded(3)
				RecordIssueResolved()
				RecordPointsCredited(100)
				RecordSettlement()
				RecordClaim(1_000)
				UpdateTotalEvents(1)
				RecordStoreUpdateLatency(1.5)
				RecordStoreQueryLatency(0.5)
				RecordJournalAppend()
				UpdateJournalSize(10)
				RecordHTTPRequest("events", "POST", "200")
				RecordHTTPRequestDuration("events", "POST", "200", 2.0)
				RecordRequestDuplicate()
				RecordErrorByEndpoint("events", "POST", "client_error")
				RecordErrorByType("client_error", "medium")
				RecordErrorLatency("http", "client_error", 1.0)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed for scraping", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
