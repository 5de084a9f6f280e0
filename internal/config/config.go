package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	CurrentRMS CurrentRMSConfig `yaml:"currentrms" mapstructure:"currentrms"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CurrentRMSConfig holds Current RMS API credentials and tuning.
type CurrentRMSConfig struct {
	Subdomain  string  `yaml:"subdomain" mapstructure:"subdomain"`
	Token      string  `yaml:"token" mapstructure:"token"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Configured reports whether API credentials are present. Without them the
// dashboard runs on the snapshot cache or the demo dataset.
func (c CurrentRMSConfig) Configured() bool {
	return c.Subdomain != "" && c.Token != ""
}

// StoreConfig configures the snapshot cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures the listing fetch.
type FetchConfig struct {
	PerPage int `yaml:"per_page" mapstructure:"per_page"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RISKDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("currentrms.base_url", "https://api.current-rms.com/api/v1")
	v.SetDefault("currentrms.rate_per_sec", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "riskdash.db")
	v.SetDefault("fetch.per_page", 50)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// WriteSample writes a starter config file with the defaults filled in.
func WriteSample(path string) error {
	sample := Config{
		CurrentRMS: CurrentRMSConfig{
			Subdomain:  "your-subdomain",
			Token:      "your-api-token",
			BaseURL:    "https://api.current-rms.com/api/v1",
			RatePerSec: 5,
		},
		Store:  StoreConfig{Driver: "sqlite", Path: "riskdash.db"},
		Fetch:  FetchConfig{PerPage: 50},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "json"},
	}

	out, err := yaml.Marshal(sample)
	if err != nil {
		return eris.Wrap(err, "config: marshal sample")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrap(err, "config: write sample")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
