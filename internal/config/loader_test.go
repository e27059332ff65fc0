package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/bounty/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"BOUNTY_CONFIG",
		"BOUNTY_ADDR",
		"BOUNTY_LOG_LEVEL",
		"BOUNTY_JOURNAL_QUEUE_SIZE",
		"BOUNTY_JOURNAL_WORKER_COUNT",
		"BOUNTY_JOURNAL_SIZE",
		"BOUNTY_DEDUPE_SIZE",
		"BOUNTY_MAX_LEADERBOARD_LIMIT",
		"BOUNTY_OPENING_BALANCE",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

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
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.JournalWorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BOUNTY_ADDR", ":8080")
			_ = os.Setenv("BOUNTY_JOURNAL_QUEUE_SIZE", "5000")
			_ = os.Setenv("BOUNTY_JOURNAL_WORKER_COUNT", "2")
			_ = os.Setenv("BOUNTY_DEDUPE_SIZE", "1000")
			_ = os.Setenv("BOUNTY_OPENING_BALANCE", "1000000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.JournalWorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 1000)
				convey.So(cfg.OpeningBalance, convey.ShouldEqual, 1_000_000)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
log_level: "debug"
journal_queue_size: 2000
journal_worker_count: 3
max_leaderboard_limit: 50
accounts:
  octocat: 10000000000
assets:
  trophy-1: octocat
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("BOUNTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.JournalWorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
				convey.So(cfg.Accounts["octocat"], convey.ShouldEqual, 10_000_000_000)
				convey.So(cfg.Assets["trophy-1"], convey.ShouldEqual, "octocat")
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			yamlContent := `
addr: ":9090"
journal_queue_size: 2000
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("BOUNTY_CONFIG", tmpFile)
			_ = os.Setenv("BOUNTY_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env takes precedence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 2000)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("BOUNTY_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails with the load sentinel", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When validation rejects the merged result", func() {
			_ = os.Setenv("BOUNTY_JOURNAL_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails with the invalid sentinel", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
