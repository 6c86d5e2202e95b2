package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is read from an optional .env file (TOML) overlaid by environment variables
 * Getters fall back to defaults for zero or negative values
 */

type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DatabaseURL                string `mapstructure:"DATABASE_URL"`
	PostgresMaxOpenConns       int    `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	PostgresMaxIdleConns       int    `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	PostgresConnMaxLifeMinutes int    `mapstructure:"POSTGRES_CONN_MAX_LIFE_MINUTES"`

	WebhookRetryAttempts       int    `mapstructure:"WEBHOOK_RETRY_ATTEMPTS"`
	WebhookRetryTimeoutHours   int    `mapstructure:"WEBHOOK_RETRY_TIMEOUT_HOURS"`
	WebhookRetryScheduler      string `mapstructure:"WEBHOOK_RETRY_SCHEDULER"`
	WebhookSource              string `mapstructure:"WEBHOOK_SOURCE"`
	WebhookUserAgent           string `mapstructure:"WEBHOOK_USER_AGENT"`
	WebhookHTTPTimeoutSeconds  int    `mapstructure:"WEBHOOK_HTTP_TIMEOUT_SECONDS"`
	WebhookFanoutConcurrency   int    `mapstructure:"WEBHOOK_FANOUT_CONCURRENCY"`
	WebhookSweepIntervalSecs   int    `mapstructure:"WEBHOOK_SWEEP_INTERVAL_SECONDS"`
	WebhookRecoverIntervalSecs int    `mapstructure:"WEBHOOK_RECOVER_INTERVAL_SECONDS"`
	WebhookAttemptTTLHours     int    `mapstructure:"WEBHOOK_ATTEMPT_TTL_HOURS"`

	SubscriptionsFile string `mapstructure:"SUBSCRIPTIONS_FILE"`
}

// Retry schedulers selectable with WEBHOOK_RETRY_SCHEDULER
const (
	SchedulerRedis  = "redis"
	SchedulerMemory = "memory"
)

var defaults = map[string]any{
	"PORT":                             "8080",
	"LOG_LEVEL":                        "info",
	"REDIS_ADDR":                       "localhost:6379",
	"REDIS_PASSWORD":                   "",
	"REDIS_DB":                         0,
	"DATABASE_URL":                     "",
	"POSTGRES_MAX_OPEN_CONNS":          25,
	"POSTGRES_MAX_IDLE_CONNS":          5,
	"POSTGRES_CONN_MAX_LIFE_MINUTES":   5,
	"WEBHOOK_RETRY_ATTEMPTS":           10,
	"WEBHOOK_RETRY_TIMEOUT_HOURS":      6,
	"WEBHOOK_RETRY_SCHEDULER":          SchedulerRedis,
	"WEBHOOK_SOURCE":                   "https://api.wusul.io",
	"WEBHOOK_USER_AGENT":               "Wusul-Webhooks/1.0",
	"WEBHOOK_HTTP_TIMEOUT_SECONDS":     30,
	"WEBHOOK_FANOUT_CONCURRENCY":       16,
	"WEBHOOK_SWEEP_INTERVAL_SECONDS":   1,
	"WEBHOOK_RECOVER_INTERVAL_SECONDS": 60,
	"WEBHOOK_ATTEMPT_TTL_HOURS":        0,
	"SUBSCRIPTIONS_FILE":               "",
}

// GetConfig reads .env from the working directory and the environment
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads .env from dir (if present) and the environment
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// GetPort returns the HTTP port
func (c *Config) GetPort() string {
	if c.Port == "" {
		return "8080"
	}
	return c.Port
}

// GetLogLevel returns the zerolog level name
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	if c.RedisAddr == "" {
		return "localhost:6379"
	}
	return c.RedisAddr
}

// GetPostgresPool returns max open conns, max idle conns and max lifetime in minutes
func (c *Config) GetPostgresPool() (int, int, int) {
	return positive(c.PostgresMaxOpenConns, 25), positive(c.PostgresMaxIdleConns, 5), positive(c.PostgresConnMaxLifeMinutes, 5)
}

// GetWebhookRetryAttempts returns the attempt bound before abandoning a delivery
func (c *Config) GetWebhookRetryAttempts() int {
	return positive(c.WebhookRetryAttempts, 10)
}

// GetWebhookRetryTimeoutHours returns the age bound before abandoning a delivery
func (c *Config) GetWebhookRetryTimeoutHours() int {
	return positive(c.WebhookRetryTimeoutHours, 6)
}

// GetWebhookSource returns the CloudEvents source attribute
func (c *Config) GetWebhookSource() string {
	if c.WebhookSource == "" {
		return "https://api.wusul.io"
	}
	return c.WebhookSource
}

// GetWebhookUserAgent returns the User-Agent sent to subscribers
func (c *Config) GetWebhookUserAgent() string {
	if c.WebhookUserAgent == "" {
		return "Wusul-Webhooks/1.0"
	}
	return c.WebhookUserAgent
}

// GetWebhookHTTPTimeout returns the per-request delivery timeout
func (c *Config) GetWebhookHTTPTimeout() time.Duration {
	return time.Duration(positive(c.WebhookHTTPTimeoutSeconds, 30)) * time.Second
}

// GetWebhookFanoutConcurrency returns how many deliveries one fan-out runs at once
func (c *Config) GetWebhookFanoutConcurrency() int {
	return positive(c.WebhookFanoutConcurrency, 16)
}

// GetWebhookSweepInterval returns how often due retries are polled
func (c *Config) GetWebhookSweepInterval() time.Duration {
	return time.Duration(positive(c.WebhookSweepIntervalSecs, 1)) * time.Second
}

// GetWebhookRecoverInterval returns how often stranded retries are looked for
func (c *Config) GetWebhookRecoverInterval() time.Duration {
	return time.Duration(positive(c.WebhookRecoverIntervalSecs, 60)) * time.Second
}

// GetWebhookRetryScheduler returns SchedulerMemory or SchedulerRedis
func (c *Config) GetWebhookRetryScheduler() string {
	if strings.EqualFold(strings.TrimSpace(c.WebhookRetryScheduler), SchedulerMemory) {
		return SchedulerMemory
	}
	return SchedulerRedis
}

/* GetWebhookAttemptTTL returns how long final delivery attempts are kept
 * Zero, the default, keeps them forever
 */
func (c *Config) GetWebhookAttemptTTL() time.Duration {
	if c.WebhookAttemptTTLHours <= 0 {
		return 0
	}
	return time.Duration(c.WebhookAttemptTTLHours) * time.Hour
}

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
