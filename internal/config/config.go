package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Symbol     string `yaml:"symbol" default:"AAPL" validate:"required"`
	DataSource struct {
		Provider string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo file mock"`
		CSVPath  string `yaml:"csv_path"`
	} `yaml:"data_source"`
	Estimator struct {
		ForwardWeight  float64 `yaml:"forward_weight" default:"0.6" validate:"gte=0"`
		BackwardWeight float64 `yaml:"backward_weight" default:"0.3" validate:"gte=0"`
		CentralWeight  float64 `yaml:"central_weight" default:"0.1" validate:"gte=0"`
		VarianceCap    float64 `yaml:"variance_cap" default:"10" validate:"gt=0"`
	} `yaml:"estimator"`
	Output struct {
		ChartDir string `yaml:"chart_dir" default:"charts"`
		NoChart  bool   `yaml:"no_chart"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/trendsentinel.db"`
	} `yaml:"database"`
	History struct {
		StateFile string `yaml:"state_file" default:"data/run_state.json"`
	} `yaml:"history"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron" default:"0 30 22 * * 1-5" validate:"required"`
		WeeklyCron string `yaml:"weekly_cron" default:"0 0 18 * * 5" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telemetry struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"telemetry"`
	Log struct {
		Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, applies environment variable
// overrides, fills defaults, and validates. A missing file is fine; the
// defaults describe a runnable setup.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CHART_DIR"); v != "" {
		cfg.Output.ChartDir = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}
	if v := os.Getenv("VARIANCE_CAP"); v != "" {
		var vc float64
		if _, err := fmt.Sscanf(v, "%f", &vc); err == nil {
			cfg.Estimator.VarianceCap = vc
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks tag constraints plus the rules individual tags cannot
// express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config: %s failed %q validation", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("config validate: %w", err)
	}
	sum := c.Estimator.ForwardWeight + c.Estimator.BackwardWeight + c.Estimator.CentralWeight
	if sum <= 0 {
		return fmt.Errorf("config: estimator weights must not all be zero")
	}
	if c.DataSource.Provider == "file" && c.DataSource.CSVPath == "" {
		return fmt.Errorf("config: data_source.csv_path is required for the file provider")
	}
	return nil
}
