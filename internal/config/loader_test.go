package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/trainops/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.RiskAttendanceWeight, convey.ShouldEqual, 0.5)
				convey.So(cfg.PMRoleSynonyms, convey.ShouldResemble, []string{"pm", "product manager"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("TRAINOPS_LOG_LEVEL", "debug")
			t.Setenv("TRAINOPS_DATA_PATH", "/srv/data/cohorts.yaml")
			t.Setenv("TRAINOPS_WORKER_COUNT", "16")
			t.Setenv("TRAINOPS_METRICS_FILE", "/var/lib/node_exporter/trainops.prom")
			t.Setenv("TRAINOPS_PM_ROLE_SYNONYMS", "pm, 기획자 ,,po")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DataPath, convey.ShouldEqual, "/srv/data/cohorts.yaml")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.MetricsFile, convey.ShouldEqual, "/var/lib/node_exporter/trainops.prom")
				convey.So(cfg.PMRoleSynonyms, convey.ShouldResemble, []string{"pm", "기획자", "po"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
worker_count: 24
risk_attendance_weight: 0.6
risk_score_weight: 0.2
risk_satisfaction_weight: 0.2
pm_role_synonyms:
  - product owner
`)
			t.Setenv("TRAINOPS_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.RiskAttendanceWeight, convey.ShouldEqual, 0.6)
				convey.So(cfg.PMRoleSynonyms, convey.ShouldResemble, []string{"product owner"})
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
log_level: warn
worker_count: 24
`)
			t.Setenv("TRAINOPS_CONFIG", path)
			t.Setenv("TRAINOPS_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn") // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)  // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("TRAINOPS_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("TRAINOPS_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("TRAINOPS_WORKER_COUNT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the worker count is zero", func() {
			t.Setenv("TRAINOPS_WORKER_COUNT", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count must be at least 1")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.Convey("Then it should not load anything", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, envVar := range []string{
		"TRAINOPS_CONFIG",
		"TRAINOPS_LOG_LEVEL",
		"TRAINOPS_DATA_PATH",
		"TRAINOPS_WORKER_COUNT",
		"TRAINOPS_METRICS_FILE",
		"TRAINOPS_RISK_ATTENDANCE_WEIGHT",
		"TRAINOPS_RISK_SCORE_WEIGHT",
		"TRAINOPS_RISK_SATISFACTION_WEIGHT",
		"TRAINOPS_PM_ROLE_SYNONYMS",
	} {
		t.Setenv(envVar, "")
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trainops.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
