// Package config loads the HTTP server configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/validation"
)

// Auth modes
const (
	AuthHeader = "header"
	AuthJWT    = "jwt"
)

type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gte=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

// DatabaseConfig names the store. DSN is a SQLite path, a postgres:// URL or
// the literal "memory".
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	Mode      string `yaml:"mode" validate:"oneof=header jwt"`
	JWTSecret string `yaml:"jwt_secret" validate:"required_if=Mode jwt"`
}

// AMQPConfig enables unlock events when URL is set
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

type EvaluationConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Auth:       AuthConfig{Mode: AuthHeader},
		AMQP:       AMQPConfig{Exchange: constants.DefaultEventExchange},
		Metrics:    MetricsConfig{Enabled: true, Path: "/metrics"},
		Evaluation: EvaluationConfig{Timeout: constants.DefaultEvaluationTimeout},
	}
}

// SecretSource supplies a JWT secret when neither the file nor the
// environment sets one. It returns "" when it has none.
type SecretSource func() (string, error)

// Load reads path over the defaults, applies KEEPSTREAK_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string, fallback ...SecretSource) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := OverrideFromEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Auth.Mode == AuthJWT && cfg.Auth.JWTSecret == "" {
		for _, src := range fallback {
			secret, err := src()
			if err != nil {
				return Config{}, fmt.Errorf("failed to read jwt secret: %w", err)
			}
			if secret != "" {
				cfg.Auth.JWTSecret = secret
				break
			}
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if err := validation.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// OverrideFromEnv applies environment overrides on top of cfg
func OverrideFromEnv(cfg *Config) error {
	if addr := os.Getenv("KEEPSTREAK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dsn := os.Getenv("KEEPSTREAK_DB_CONNECTION"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if mode := os.Getenv("KEEPSTREAK_AUTH_MODE"); mode != "" {
		cfg.Auth.Mode = mode
	}
	if secret := os.Getenv("KEEPSTREAK_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if url := os.Getenv("KEEPSTREAK_AMQP_URL"); url != "" {
		cfg.AMQP.URL = url
	}
	if exchange := os.Getenv("KEEPSTREAK_AMQP_EXCHANGE"); exchange != "" {
		cfg.AMQP.Exchange = exchange
	}
	if enabled := os.Getenv("KEEPSTREAK_METRICS_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid KEEPSTREAK_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	if timeout := os.Getenv("KEEPSTREAK_EVALUATION_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid KEEPSTREAK_EVALUATION_TIMEOUT: %w", err)
		}
		cfg.Evaluation.Timeout = d
	}
	if debug := os.Getenv("KEEPSTREAK_DEBUG"); debug != "" {
		b, err := strconv.ParseBool(debug)
		if err != nil {
			return fmt.Errorf("invalid KEEPSTREAK_DEBUG: %w", err)
		}
		cfg.Log.Debug = b
	}
	return nil
}
