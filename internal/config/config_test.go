package config_test

import (
	"runtime"
	"testing"

	"github.com/crease-io/crease/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.NameSimilarityThreshold, convey.ShouldEqual, 0.85)
			convey.So(cfg.AmbiguityMargin, convey.ShouldEqual, 0.02)
			convey.So(cfg.MultiplierMin, convey.ShouldEqual, 0.69)
			convey.So(cfg.MultiplierMax, convey.ShouldEqual, 5.0)
			convey.So(cfg.DriftRetainWeight, convey.ShouldEqual, 0.85)
			convey.So(cfg.ScoringPeriodDays, convey.ShouldEqual, 7)
			convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 100)
		})
	})
}
