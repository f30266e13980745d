package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

// Config captures the settings required to boot the engine service.
type Config struct {
	Server     ServerConfig          `yaml:"server"`
	CarePortal CarePortalConfig      `yaml:"carePortal"`
	Profile    models.InsulinProfile `yaml:"profile"`
	IOB        IOBConfig             `yaml:"iob"`
	Logging    LoggingConfig         `yaml:"logging"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// CarePortalConfig configures access to the care portal API that feeds
// treatments, basal intervals and device statuses.
type CarePortalConfig struct {
	BaseURL   string        `yaml:"baseURL"`
	APISecret string        `yaml:"apiSecret"`
	APIToken  string        `yaml:"apiToken"`
	UseToken  bool          `yaml:"useToken"`
	Timeout   time.Duration `yaml:"timeout"`
}

// IOBConfig tunes the IOB reconciliation policy.
type IOBConfig struct {
	StaleMinutes float64 `yaml:"staleMinutes"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("INSULIN_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		CarePortal: CarePortalConfig{
			Timeout: 30 * time.Second,
		},
		Profile: models.DefaultInsulinProfile(),
		IOB: IOBConfig{
			StaleMinutes: 30,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSULIN_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("INSULIN_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("INSULIN_ENGINE_CAREPORTAL_URL"); v != "" {
		cfg.CarePortal.BaseURL = v
	}
	if v := os.Getenv("INSULIN_ENGINE_CAREPORTAL_SECRET"); v != "" {
		cfg.CarePortal.APISecret = v
	}
	if v := os.Getenv("INSULIN_ENGINE_CAREPORTAL_TOKEN"); v != "" {
		cfg.CarePortal.APIToken = v
		cfg.CarePortal.UseToken = true
	}
	if v := os.Getenv("INSULIN_ENGINE_PROFILE_DIA"); v != "" {
		if dia, err := strconv.ParseFloat(v, 64); err == nil && dia > 0 {
			cfg.Profile.DIA = dia
		}
	}
	if v := os.Getenv("INSULIN_ENGINE_IOB_STALE_MINUTES"); v != "" {
		if minutes, err := strconv.ParseFloat(v, 64); err == nil && minutes > 0 {
			cfg.IOB.StaleMinutes = minutes
		}
	}
	if v := os.Getenv("INSULIN_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INSULIN_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
