package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration. Values come from (lowest to highest precedence)
// defaults, an optional config.yaml, an optional .env file and the environment.
type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// StorageBackend selects the activity repository: memory|postgres.
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	// IdempotencyBackend selects the signup replay store: memory|postgres|redis.
	IdempotencyBackend string        `mapstructure:"IDEMPOTENCY_BACKEND"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`

	// APIBaseURL is where the signup view reaches the activities API.
	// Empty means the API served by this process.
	APIBaseURL string `mapstructure:"API_BASE_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"HTTP_PORT",
	"SHUTDOWN_TIMEOUT",
	"STORAGE_BACKEND",
	"DATABASE_URL",
	"IDEMPOTENCY_BACKEND",
	"IDEMPOTENCY_TTL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"API_BASE_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

// Load reads configuration. configDirs are searched for config.yaml; a missing file is not
// an error.
func Load(configDirs ...string) (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, d := range configDirs {
		v.AddConfigPath(d)
	}
	if len(configDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	for _, k := range keys {
		// AutomaticEnv alone does not feed Unmarshal for keys without a default.
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("IDEMPOTENCY_BACKEND", "memory")
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func normalize(cfg *Config) {
	cfg.HTTPPort = strings.TrimSpace(cfg.HTTPPort)
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.IdempotencyBackend = strings.ToLower(strings.TrimSpace(cfg.IdempotencyBackend))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://127.0.0.1:" + cfg.HTTPPort
	}
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory|postgres)", c.StorageBackend)
	}

	switch c.IdempotencyBackend {
	case "memory", "redis":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("IDEMPOTENCY_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown IDEMPOTENCY_BACKEND %q (expected memory|postgres|redis)", c.IdempotencyBackend)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be a positive duration (e.g. 10s)")
	}
	return nil
}
