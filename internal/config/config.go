package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`

	OpenWeatherAPIKey  string        `env:"OPENWEATHER_API_KEY,required"`
	OpenWeatherBaseURL string        `env:"OPENWEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`
	WeatherTimeout     time.Duration `env:"WEATHER_TIMEOUT" envDefault:"10s"`

	CronSchedule string        `env:"CRON_SCHEDULE" envDefault:"0 * * * *"`
	RunTimeout   time.Duration `env:"RUN_TIMEOUT" envDefault:"5m"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	SMTP SMTPConfig

	// Kafka alert fan-out is enabled by setting KAFKA_BROKERS.
	KafkaBrokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaSinkTopic string   `env:"KAFKA_SINK_TOPIC" envDefault:"climate-alert-events"`
}

// SMTPConfig configures the notification sender. Leaving Username or
// Password empty disables delivery; digests are then logged and dropped.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM"`
}

// Configured reports whether credentials are present.
func (s SMTPConfig) Configured() bool {
	return s.Username != "" && s.Password != ""
}

// KafkaEnabled reports whether the alert event publisher should be wired.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file is honored for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.WeatherTimeout <= 0 {
		return nil, errors.New("WEATHER_TIMEOUT must be positive")
	}
	if cfg.RunTimeout <= 0 {
		return nil, errors.New("RUN_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.CronSchedule == "" {
		return nil, errors.New("CRON_SCHEDULE is required")
	}
	if cfg.SMTP.Port <= 0 {
		return nil, errors.New("SMTP_PORT must be positive")
	}

	return cfg, nil
}
