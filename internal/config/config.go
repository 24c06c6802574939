// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Validation failures wrap ErrInvalidConfig; load failures wrap ErrLoadConfig.
package config

import (
	"context"
	"runtime"

	"github.com/okian/trainops/internal/domain/recommend"
	"github.com/okian/trainops/internal/domain/risk"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" name:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// DataPath points at a JSON or YAML dataset. Empty uses the bundled seed.
	DataPath string `koanf:"data_path" name:"data_path"`

	// WorkerCount bounds concurrent cohort evaluations in batch mode.
	WorkerCount int `koanf:"worker_count" name:"worker_count" validate:"min=1,max=1024"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file" name:"metrics_file"`

	// Risk signal weights. They must be non-negative and sum to at most 1.
	RiskAttendanceWeight   float64 `koanf:"risk_attendance_weight" name:"risk_attendance_weight" validate:"gte=0,lte=1"`
	RiskScoreWeight        float64 `koanf:"risk_score_weight" name:"risk_score_weight" validate:"gte=0,lte=1"`
	RiskSatisfactionWeight float64 `koanf:"risk_satisfaction_weight" name:"risk_satisfaction_weight" validate:"gte=0,lte=1"`

	// PMRoleSynonyms lists role names that earn the product manager bonus.
	PMRoleSynonyms []string `koanf:"pm_role_synonyms" name:"pm_role_synonyms" validate:"min=1,dive,notblank"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	w := risk.DefaultWeights()
	return &Config{
		LogLevel:               "info",
		WorkerCount:            runtime.NumCPU(),
		RiskAttendanceWeight:   w.Attendance,
		RiskScoreWeight:        w.Score,
		RiskSatisfactionWeight: w.Satisfaction,
		PMRoleSynonyms:         recommend.DefaultPMRoleSynonyms(),
	}
}

// RiskWeights returns the configured risk weights.
func (c *Config) RiskWeights() risk.Weights {
	return risk.Weights{
		Attendance:   c.RiskAttendanceWeight,
		Score:        c.RiskScoreWeight,
		Satisfaction: c.RiskSatisfactionWeight,
	}
}
