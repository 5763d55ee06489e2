package config_test

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/clubops/standings/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ResultQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.DropWorstCount, convey.ShouldEqual, 1)
				convey.So(cfg.TeamSize, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STANDINGS_ADDR", ":8080")
			_ = os.Setenv("STANDINGS_QUEUE_SIZE", "5000")
			_ = os.Setenv("STANDINGS_WORKER_COUNT", "4")
			_ = os.Setenv("STANDINGS_DROP_WORST_COUNT", "2")
			_ = os.Setenv("STANDINGS_MAX_STANDINGS_LIMIT", "100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ResultQueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.DropWorstCount, convey.ShouldEqual, 2)
				convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
queue_size: 2000
worker_count: 8
drop_worst_count: 3
team_size: 3
contest_weights:
  weekly-05: 120
default_contest_weight: 90
penalty_weight: 0.5
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STANDINGS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ResultQueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.DropWorstCount, convey.ShouldEqual, 3)
				convey.So(cfg.ContestWeights["weekly-05"], convey.ShouldEqual, 120)
				convey.So(cfg.DefaultContestWeight, convey.ShouldEqual, 90)
				convey.So(cfg.PenaltyWeight, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
queue_size: 2000
worker_count: 8
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STANDINGS_CONFIG", tmpFile)
			_ = os.Setenv("STANDINGS_ADDR", ":8080")
			_ = os.Setenv("STANDINGS_WORKER_COUNT", "16")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")          // Overridden by env
				convey.So(cfg.ResultQueueSize, convey.ShouldEqual, 2000)  // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)        // Overridden by env
			})
		})

		convey.Convey("When the config file path does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("STANDINGS_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When validation fails", func() {
			clearConfigEnvVars()
			_ = os.Setenv("STANDINGS_DROP_WORST_COUNT", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should reject a negative drop count", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"STANDINGS_CONFIG",
		"STANDINGS_ADDR",
		"STANDINGS_QUEUE_SIZE",
		"STANDINGS_WORKER_COUNT",
		"STANDINGS_DEDUPE_SIZE",
		"STANDINGS_DROP_WORST_COUNT",
		"STANDINGS_TEAM_SIZE",
		"STANDINGS_MAX_STANDINGS_LIMIT",
		"STANDINGS_DEFAULT_CONTEST_WEIGHT",
		"STANDINGS_PENALTY_WEIGHT",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "standings-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}
