// Package config provides Viper-based hierarchical configuration management.
//
// Values are resolved in order: defaults, config.yaml, SPEND_* environment
// variables. A .env file, when present, is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the application reads.
const EnvPrefix = "SPEND"

// Supported cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Format struct {
		Default     string `mapstructure:"default" yaml:"default"`
		PresetsFile string `mapstructure:"presets_file" yaml:"presets_file"`
	} `mapstructure:"format" yaml:"format"`

	Display struct {
		CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
		DateLayout     string `mapstructure:"date_layout" yaml:"date_layout"`
	} `mapstructure:"display" yaml:"display"`

	Server struct {
		Addr           string   `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB    int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		MaxSessions    int           `mapstructure:"max_sessions" yaml:"max_sessions"`
		SessionTTL     time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	} `mapstructure:"server" yaml:"server"`

	Cache struct {
		Backend  string        `mapstructure:"backend" yaml:"backend"`
		Size     int           `mapstructure:"size" yaml:"size"`
		TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
		RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	} `mapstructure:"cache" yaml:"cache"`
}

// LoadFile loads configuration from configFile, or from the standard search
// path ($HOME/.spend-dashboard, .spend-dashboard, .) when configFile is empty.
func LoadFile(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.spend-dashboard")
		v.AddConfigPath(".spend-dashboard")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// REDIS_URL is the conventional name used by hosting platforms.
	if err := v.BindEnv("cache.redis_url", EnvPrefix+"_CACHE_REDIS_URL", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind redis url: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("format.default", "classic")
	v.SetDefault("format.presets_file", "")

	v.SetDefault("display.currency_symbol", "$")
	v.SetDefault("display.date_layout", "02 Jan 2006")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.session_ttl", "2h")

	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.redis_url", "")
}

func validateConfig(config *Config) error {
	var problems []string

	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level: %s", config.Log.Level))
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format))
	}
	if strings.TrimSpace(config.Format.Default) == "" {
		problems = append(problems, "format.default must not be empty")
	}
	if config.Server.Addr == "" {
		problems = append(problems, "server.addr must not be empty")
	}
	if config.Server.MaxUploadMB < 1 || config.Server.MaxUploadMB > 512 {
		problems = append(problems, fmt.Sprintf("server.max_upload_mb must be between 1 and 512, got: %d", config.Server.MaxUploadMB))
	}
	if config.Server.MaxSessions < 1 {
		problems = append(problems, fmt.Sprintf("server.max_sessions must be positive, got: %d", config.Server.MaxSessions))
	}
	if config.Server.SessionTTL <= 0 {
		problems = append(problems, fmt.Sprintf("server.session_ttl must be positive, got: %s", config.Server.SessionTTL))
	}

	switch config.Cache.Backend {
	case CacheBackendMemory:
		if config.Cache.Size < 1 {
			problems = append(problems, fmt.Sprintf("cache.size must be positive, got: %d", config.Cache.Size))
		}
	case CacheBackendRedis:
		if config.Cache.RedisURL == "" {
			problems = append(problems, "cache.redis_url (or REDIS_URL) required when cache.backend is redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid cache backend: %s (must be 'memory' or 'redis')", config.Cache.Backend))
	}
	if config.Cache.TTL <= 0 {
		problems = append(problems, fmt.Sprintf("cache.ttl must be positive, got: %s", config.Cache.TTL))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
