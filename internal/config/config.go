package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the subscription endpoint the widget posts to.
const DefaultEndpoint = "https://sendmailfrombrevo.netlify.app/api/newEmail"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Form       FormConfig       `yaml:"form"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// NewsletterConfig holds the outbound subscription endpoint configuration
type NewsletterConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	MaxRetries     int           `yaml:"max_retries"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// Timeout returns the configured timeout as a duration
func (c NewsletterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BreakerConfig controls the optional circuit breaker around the endpoint
type BreakerConfig struct {
	Enabled            bool   `yaml:"enabled"`
	FailureThreshold   uint32 `yaml:"failure_threshold"`
	OpenTimeoutSeconds int    `yaml:"open_timeout_seconds"`
}

// OpenTimeout returns how long the breaker stays open before probing again
func (c BreakerConfig) OpenTimeout() time.Duration {
	return time.Duration(c.OpenTimeoutSeconds) * time.Second
}

// FormConfig holds the subscription form behavior settings
type FormConfig struct {
	ResetDelayMS             int    `yaml:"reset_delay_ms"`
	ResetSubmittingOnFailure bool   `yaml:"reset_submitting_on_failure"`
	DefaultLocale            string `yaml:"default_locale"`
}

// ResetDelay returns how long a success message stays visible
func (c FormConfig) ResetDelay() time.Duration {
	return time.Duration(c.ResetDelayMS) * time.Millisecond
}

// SessionConfig holds browser session settings
type SessionConfig struct {
	TTLMinutes   int    `yaml:"ttl_minutes"`
	CookieName   string `yaml:"cookie_name"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// TTL returns the idle lifetime of a session
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// Enabled reports whether a Redis address is configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// LockTTL returns the TTL of the per-address submit lock
func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on (default true)
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Newsletter.Endpoint == "" {
		cfg.Newsletter.Endpoint = DefaultEndpoint
	}
	if cfg.Newsletter.TimeoutSeconds == 0 {
		cfg.Newsletter.TimeoutSeconds = 30
	}
	if cfg.Newsletter.Breaker.FailureThreshold == 0 {
		cfg.Newsletter.Breaker.FailureThreshold = 5
	}
	if cfg.Newsletter.Breaker.OpenTimeoutSeconds == 0 {
		cfg.Newsletter.Breaker.OpenTimeoutSeconds = 30
	}
	if cfg.Form.ResetDelayMS == 0 {
		cfg.Form.ResetDelayMS = 5000
	}
	if cfg.Form.DefaultLocale == "" {
		cfg.Form.DefaultLocale = "en"
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 30
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "subscribebox_sid"
	}
	if cfg.Redis.LockTTLSeconds == 0 {
		// must outlive the newsletter timeout
		cfg.Redis.LockTTLSeconds = cfg.Newsletter.TimeoutSeconds + 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in containers.
// A missing config file is not an error here: defaults plus env are used.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	if v := os.Getenv("NEWSLETTER_ENDPOINT"); v != "" {
		cfg.Newsletter.Endpoint = v
	}
	if v := os.Getenv("NEWSLETTER_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Newsletter.MaxRetries = n
		}
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FORM_DEFAULT_LOCALE"); v != "" {
		cfg.Form.DefaultLocale = v
	}
	if v := os.Getenv("FORM_RESET_SUBMITTING_ON_FAILURE"); v != "" {
		cfg.Form.ResetSubmittingOnFailure = v == "true" || v == "1"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
