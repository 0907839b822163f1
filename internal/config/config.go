// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Feeds   FeedsConfig   `yaml:"feeds" mapstructure:"feeds"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// FeedsConfig holds the upstream feed endpoints. An empty URL disables the
// feed.
type FeedsConfig struct {
	WeatherURL   string `yaml:"weather_url" mapstructure:"weather_url"`
	QuakeURL     string `yaml:"quake_url" mapstructure:"quake_url"`
	NewsURL      string `yaml:"news_url" mapstructure:"news_url"`
	TransportURL string `yaml:"transport_url" mapstructure:"transport_url"`
	NewsAPIKey   string `yaml:"news_api_key" mapstructure:"news_api_key"`
}

// ScoringConfig configures the scoring tables and quality feedback.
type ScoringConfig struct {
	// TablesPath points to a YAML file overriding the built-in scoring
	// tables. Empty means defaults.
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`

	// BlendQuality enables feeding the quality monitor's trailing source
	// reliability back into confidence scoring.
	BlendQuality bool `yaml:"blend_quality" mapstructure:"blend_quality"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("DISRUPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "disruption.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("scoring.blend_quality", true)
	v.SetDefault("feeds.weather_url", "https://api.weather.gov/alerts/active")
	v.SetDefault("feeds.quake_url", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_day.geojson")

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

// Validate checks the configuration for the given run mode. Modes: "score",
// "fetch", "serve", "export".
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		problems = append(problems, "batch.concurrency must be between 1 and 64")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "score", "export":
	case "fetch":
		if c.Feeds.WeatherURL == "" && c.Feeds.QuakeURL == "" &&
			c.Feeds.NewsURL == "" && c.Feeds.TransportURL == "" {
			problems = append(problems, "at least one feed URL is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		problems = append(problems, "unknown mode "+mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
