package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"prediction-engine/models"
)

// Config holds the engine configuration. The loaded value is immutable
// by convention: it is passed into the engine and predictors at
// construction and never written afterwards, so weights and thresholds
// can be varied per deployment or per test without shared state.
type Config struct {
	Server     ServerConfig `yaml:"server"`
	Database   DBConfig     `yaml:"database"`
	Retention  Retention    `yaml:"retention"`
	Predictors Predictors   `yaml:"predictors"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8090"
}

type DBConfig struct {
	Path string `yaml:"path"` // sqlite file path
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "5m" or "168h".
type Duration time.Duration

// D returns the wrapped time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Retention bounds cache growth. Signals older than MaxAge are useless
// to every predictor (no window looks back further) and are reclaimed.
type Retention struct {
	MaxAge       Duration `yaml:"max_age"`
	ReapInterval Duration `yaml:"reap_interval"`
}

// Predictors carries every weight and evidentiary threshold used by
// the predictor set.
type Predictors struct {
	EmissionThreshold int `yaml:"emission_threshold"` // minimum confidence to persist
	MaxConfidence     int `yaml:"max_confidence"`

	Failure struct {
		QualityFloor     float64 `yaml:"quality_floor"`
		LowQualityCount  int     `yaml:"low_quality_count"`
		LowQualityWeight int     `yaml:"low_quality_weight"`
		BlockedCount     int     `yaml:"blocked_count"`
		BlockedWeight    int     `yaml:"blocked_weight"`
		FailedRunCount   int     `yaml:"failed_run_count"`
		FailedRunWeight  int     `yaml:"failed_run_weight"`
	} `yaml:"failure"`

	Anomaly struct {
		RiskCeiling       float64 `yaml:"risk_ceiling"`
		HighRiskCount     int     `yaml:"high_risk_count"`
		HighRiskWeight    int     `yaml:"high_risk_weight"`
		VoiceFailCount    int     `yaml:"voice_fail_count"`
		VoiceFailWeight   int     `yaml:"voice_fail_weight"`
		FailingTestCount  int     `yaml:"failing_test_count"`
		FailingTestWeight int     `yaml:"failing_test_weight"`
	} `yaml:"anomaly"`

	Budget struct {
		RateCeiling       float64 `yaml:"rate_ceiling"`
		RateWeight        int     `yaml:"rate_weight"`
		UtilizationFloor  float64 `yaml:"utilization_floor"`
		UtilizationWeight int     `yaml:"utilization_weight"`
	} `yaml:"budget"`

	Bottleneck struct {
		PendingCount     int      `yaml:"pending_count"`
		PendingWeight    int      `yaml:"pending_weight"`
		DurationCeiling  Duration `yaml:"duration_ceiling"`
		LongRunningCount int      `yaml:"long_running_count"`
		LongRunWeight    int      `yaml:"long_run_weight"`
	} `yaml:"bottleneck"`

	Misalignment struct {
		SanitizeCount   int `yaml:"sanitize_count"`
		SanitizeWeight  int `yaml:"sanitize_weight"`
		EscalatedCount  int `yaml:"escalated_count"`
		EscalatedWeight int `yaml:"escalated_weight"`
		RiskFlagCount   int `yaml:"risk_flag_count"`
		RiskFlagWeight  int `yaml:"risk_flag_weight"`
	} `yaml:"misalignment"`
}

// WindowDuration maps a forecast window to its lookback duration.
// The table is fixed: the five buckets are part of the data model, not
// a tunable.
func WindowDuration(w models.ForecastWindow) (time.Duration, bool) {
	switch w {
	case models.Window5m:
		return 5 * time.Minute, true
	case models.Window30m:
		return 30 * time.Minute, true
	case models.Window6h:
		return 6 * time.Hour, true
	case models.Window24h:
		return 24 * time.Hour, true
	case models.Window7d:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns the default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Server:   ServerConfig{Addr: ":8090"},
		Database: DBConfig{Path: "predictions.db"},
		Retention: Retention{
			MaxAge:       Duration(7 * 24 * time.Hour), // matches the longest window
			ReapInterval: Duration(5 * time.Minute),
		},
	}

	p := &cfg.Predictors
	p.EmissionThreshold = 30
	p.MaxConfidence = 100

	p.Failure.QualityFloor = 40
	p.Failure.LowQualityCount = 3
	p.Failure.LowQualityWeight = 30
	p.Failure.BlockedCount = 2
	p.Failure.BlockedWeight = 25
	p.Failure.FailedRunCount = 1
	p.Failure.FailedRunWeight = 20

	p.Anomaly.RiskCeiling = 70
	p.Anomaly.HighRiskCount = 2
	p.Anomaly.HighRiskWeight = 35
	p.Anomaly.VoiceFailCount = 1
	p.Anomaly.VoiceFailWeight = 25
	p.Anomaly.FailingTestCount = 0
	p.Anomaly.FailingTestWeight = 20

	p.Budget.RateCeiling = 100
	p.Budget.RateWeight = 40
	p.Budget.UtilizationFloor = 80
	p.Budget.UtilizationWeight = 35

	p.Bottleneck.PendingCount = 5
	p.Bottleneck.PendingWeight = 40
	p.Bottleneck.DurationCeiling = Duration(5 * time.Minute)
	p.Bottleneck.LongRunningCount = 2
	p.Bottleneck.LongRunWeight = 30

	p.Misalignment.SanitizeCount = 1
	p.Misalignment.SanitizeWeight = 35
	p.Misalignment.EscalatedCount = 1
	p.Misalignment.EscalatedWeight = 30
	p.Misalignment.RiskFlagCount = 3
	p.Misalignment.RiskFlagWeight = 20

	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8090"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "predictions.db"
	}
	if cfg.Retention.MaxAge <= 0 {
		cfg.Retention.MaxAge = Duration(7 * 24 * time.Hour)
	}
	if cfg.Retention.ReapInterval <= 0 {
		cfg.Retention.ReapInterval = Duration(5 * time.Minute)
	}
	if cfg.Predictors.EmissionThreshold <= 0 {
		cfg.Predictors.EmissionThreshold = 30
	}
	if cfg.Predictors.MaxConfidence <= 0 {
		cfg.Predictors.MaxConfidence = 100
	}
}
