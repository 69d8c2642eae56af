package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
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
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty namespace and nil buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording ingest metrics", func() {
			Convey("Then it should record processed performances", func() {
				So(func() {
					RecordPerformanceProcessed()
					RecordPerformanceProcessed()
					RecordPerformanceProcessed()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate submissions", func() {
				So(func() {
					RecordPerformanceDuplicate()
					RecordPerformanceDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record rejections by reason", func() {
				So(func() {
					RecordPerformanceRejected("invalid")
					RecordPerformanceRejected("ambiguous")
					RecordPerformanceRejected("unknown_grade")
				}, ShouldNotPanic)
			})

			Convey("And it should record scoring latency", func() {
				So(func() {
					RecordScoringLatency(100.0)
					RecordScoringLatency(150.0)
					RecordScoringLatency(200.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording identity resolution metrics", func() {
			Convey("Then it should record resolution outcomes", func() {
				So(func() {
					RecordResolutionMatched()
					RecordResolutionUnmatched()
					RecordResolutionAmbiguous()
					RecordIdentityCreated()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording league multiplier metrics", func() {
			Convey("Then it should record drift runs and failures", func() {
				So(func() {
					RecordDriftRun()
					RecordDriftFailure()
				}, ShouldNotPanic)
			})

			Convey("And it should record multiplier updates", func() {
				So(func() {
					RecordMultiplierUpdate(0.69)
					RecordMultiplierUpdate(1.0)
					RecordMultiplierUpdate(5.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording operational metrics", func() {
			Convey("Then it should update queue size", func() {
				So(func() {
					UpdateQueueSize(1000)
					UpdateQueueSize(2000)
					UpdateQueueSize(500)
				}, ShouldNotPanic)
			})

			Convey("And it should update worker count", func() {
				So(func() {
					UpdateWorkerCount(8)
					UpdateWorkerCount(16)
					UpdateWorkerCount(4)
				}, ShouldNotPanic)
			})

			Convey("And it should update total players", func() {
				So(func() {
					UpdateTotalPlayers(10000)
					UpdateTotalPlayers(15000)
					UpdateTotalPlayers(20000)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/healthz", "GET", "200")
					RecordHTTPRequest("/performances", "POST", "202")
					RecordHTTPRequest("/standings", "GET", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/healthz", "GET", "200", 5.0)
					RecordHTTPRequestDuration("/performances", "POST", "202", 10.0)
					RecordHTTPRequestDuration("/standings", "GET", "200", 15.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording standings metrics", func() {
			Convey("Then it should record updates and snapshots", func() {
				So(func() {
					RecordStandingsUpdate()
					UpdateStandingsPlayersTotal(250)
					RecordStandingsUpdateLatency(5.0)
					RecordStandingsQueryLatency(2.0)
					RecordStandingsSnapshotRebuildDuration(8.0)
					UpdateStandingsSnapshotLastUnix(1.7e9)
					IncrementStandingsSnapshotCount()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update capacity and utilization", func() {
				So(func() {
					UpdateQueueCapacity(10000)
					UpdateQueueUtilization(0.75)
				}, ShouldNotPanic)
			})

			Convey("And it should record enqueue and dequeue traffic", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(20.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			Convey("Then it should record worker activity", func() {
				So(func() {
					UpdateWorkerActiveCount(4)
					RecordWorkerProcessingLatency(50.0)
					RecordWorkerError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("scoring", "unknown_grade")
					RecordErrorByComponent("repository", "not_found")
					RecordErrorByComponent("queue", "full")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by type and endpoint", func() {
				So(func() {
					RecordErrorByType("validation_error", "warning")
					RecordErrorByEndpoint("/performances", "POST", "backpressure")
					RecordErrorLatency("scoring", "unknown_grade", 100.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should update memory and goroutine gauges", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024 * 100)
					UpdateSystemGoroutineCount(100)
					RecordSystemGCPauseTime(1.5)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateWorkerCount(0)
					UpdateTotalPlayers(0)
					RecordScoringLatency(0.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateQueueSize(-100)
					UpdateWorkerCount(-10)
					UpdateTotalPlayers(-1000)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings", func() {
				So(func() {
					RecordHTTPRequest("", "", "200")
					RecordPerformanceRejected("")
					RecordErrorByComponent("", "")
					RecordErrorLatency("", "", 10.0)
				}, ShouldNotPanic)
			})

			Convey("And using special characters in labels", func() {
				So(func() {
					RecordHTTPRequest("/standings?limit=10", "GET", "200")
					RecordErrorByComponent("component-with-dash", "error_with_underscore")
					RecordErrorByEndpoint("/leagues/zvcc-t20/drift", "POST", "bounds_violation")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordPerformanceProcessed()
						UpdateQueueSize(1000 + j)
						RecordScoringLatency(float64(j))
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestRegistryExposure(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("When fetching the registry", func() {
			registry := GetRegistry()

			Convey("Then it should be non-nil and gatherable", func() {
				So(registry, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
