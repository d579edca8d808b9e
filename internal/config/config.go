package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// SMTP
	// ----------------------------
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@jobreach.local"`

	// ----------------------------
	// Recipient store
	// ----------------------------
	// "postgres", "csv" or "memory".
	StoreBackend string `envconfig:"STORE_BACKEND" default:"csv"`
	DatabaseURL  string `envconfig:"DATABASE_URL" default:""`
	CSVPath      string `envconfig:"CSV_PATH" default:"data/recipients.csv"`

	// ----------------------------
	// Scheduler
	// ----------------------------
	CronAutoStart    bool   `envconfig:"CRON_AUTO_START" default:"true"`
	CronIntervalMode bool   `envconfig:"CRON_INTERVAL_MODE" default:"false"`
	CronSchedule     string `envconfig:"CRON_SCHEDULE" default:"0 8 */3 * *"`
	CronIntervalDays int    `envconfig:"CRON_INTERVAL_DAYS" default:"3"`
	CronHour         int    `envconfig:"CRON_HOUR" default:"8"`
	CronMinute       int    `envconfig:"CRON_MINUTE" default:"0"`
	CronSecret       string `envconfig:"CRON_SECRET" default:""`

	// ----------------------------
	// Outbound rate limit (emails per second)
	// ----------------------------
	RateLimit int `envconfig:"RATE_LIMIT" default:"1"`

	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort string `envconfig:"API_PORT" default:"8080"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case "csv", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if c.CronIntervalDays < 1 {
		return fmt.Errorf("CRON_INTERVAL_DAYS must be >= 1, got %d", c.CronIntervalDays)
	}
	if c.CronHour < 0 || c.CronHour > 23 {
		return fmt.Errorf("CRON_HOUR must be 0-23, got %d", c.CronHour)
	}
	if c.CronMinute < 0 || c.CronMinute > 59 {
		return fmt.Errorf("CRON_MINUTE must be 0-59, got %d", c.CronMinute)
	}
	return nil
}
