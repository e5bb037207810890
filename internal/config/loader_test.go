package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/IMperiumX/ranker/internal/config"
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
				convey.So(cfg.IndexBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.UpdateQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.RebuildBatchSize, convey.ShouldEqual, 1_000)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RANKER_ADDR", ":8080")
			_ = os.Setenv("RANKER_QUEUE_SIZE", "5000")
			_ = os.Setenv("RANKER_WORKER_COUNT", "8")
			_ = os.Setenv("RANKER_INDEX_BACKEND", "redis")
			_ = os.Setenv("RANKER_REDIS_ADDR", "redis.internal:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.UpdateQueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.IndexBackend, convey.ShouldEqual, "redis")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis.internal:6379")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nmax_page_size: 50\nlog_level: debug\n"
			err := os.WriteFile(path, []byte(yaml), 0o600)
			convey.So(err, convey.ShouldBeNil)

			_ = os.Setenv("RANKER_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 50)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})

			convey.Convey("And env vars override the file", func() {
				_ = os.Setenv("RANKER_ADDR", ":6060")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the config is invalid", func() {
			clearConfigEnvVars()

			convey.Convey("Then an unknown index backend is rejected", func() {
				_ = os.Setenv("RANKER_INDEX_BACKEND", "etcd")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})

			convey.Convey("Then a missing config file is an error", func() {
				_ = os.Setenv("RANKER_CONFIG", "/nonexistent/config.yaml")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"RANKER_CONFIG",
		"RANKER_ADDR",
		"RANKER_LOG_LEVEL",
		"RANKER_INDEX_BACKEND",
		"RANKER_REDIS_ADDR",
		"RANKER_QUEUE_SIZE",
		"RANKER_WORKER_COUNT",
		"RANKER_REBUILD_BATCH_SIZE",
		"RANKER_MAX_PAGE_SIZE",
	} {
		_ = os.Unsetenv(key)
	}
}
