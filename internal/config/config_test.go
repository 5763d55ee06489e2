package config_test

import (
	"runtime"
	"testing"

	"github.com/clubops/standings/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ResultQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.DropWorstCount, convey.ShouldEqual, 1)
			convey.So(cfg.TeamSize, convey.ShouldEqual, 3)
			convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 500)
			convey.So(cfg.DefaultContestWeight, convey.ShouldEqual, 100)
			convey.So(cfg.PenaltyWeight, convey.ShouldEqual, 1)
		})
	})
}
