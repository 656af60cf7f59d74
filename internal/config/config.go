// Package config loads application configuration from file and
// environment, and initializes the global logger.
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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Maps Platform settings. The QPS limit is
// shared across Places, Distance Matrix, and Elevation calls.
type GoogleConfig struct {
	Key string  `yaml:"key" mapstructure:"key"`
	QPS float64 `yaml:"qps" mapstructure:"qps"`
}

// SerperConfig holds Serper web search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CollectConfig configures the data collection fan-out.
type CollectConfig struct {
	City          string `yaml:"city" mapstructure:"city"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	KeepPlaces    bool   `yaml:"keep_places" mapstructure:"keep_places"`
}

// ScoringConfig configures ranking defaults.
type ScoringConfig struct {
	Preset     string `yaml:"preset" mapstructure:"preset"`
	PresetFile string `yaml:"preset_file" mapstructure:"preset_file"`
}

// ServerConfig configures the rankings API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the settings required for the given command
// mode are present. Modes: collect, ratings, prices, rank, serve.
func (c *Config) Validate(mode string) error {
	var missing []string

	needStore := func() {
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			missing = append(missing, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "collect":
		needStore()
		if c.Google.Key == "" {
			missing = append(missing, "google.key is required")
		}
		if c.Collect.MaxConcurrent < 1 || c.Collect.MaxConcurrent > 32 {
			missing = append(missing, "collect.max_concurrent must be between 1 and 32")
		}
	case "ratings":
		needStore()
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
	case "prices":
		needStore()
		if c.Serper.Key == "" {
			missing = append(missing, "serper.key is required")
		}
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
	case "rank":
		needStore()
	case "serve":
		needStore()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOCALITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "locality.db")
	v.SetDefault("google.qps", 10)
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("collect.city", "Thiruvananthapuram")
	v.SetDefault("collect.max_concurrent", 4)
	v.SetDefault("collect.timeout_secs", 180)
	v.SetDefault("collect.keep_places", true)
	v.SetDefault("scoring.preset", "clean")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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
