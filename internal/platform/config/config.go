package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `validate:"required"`
	RedisAddr     string `validate:"required,hostname_port"`
	IsProduction  bool
	EnableDBCheck bool

	// CampaignConcurrency bounds the number of users processed in parallel
	// during a pool run.
	CampaignConcurrency int `validate:"min=1"`

	// Bookings and pricing provider endpoints
	BookingsAPIURL string `mapstructure:"BOOKINGS_API_URL" validate:"omitempty,url"`
	PricingAPIURL  string `mapstructure:"PRICING_API_URL" validate:"omitempty,url"`
	PayersAPIURL   string `mapstructure:"PAYERS_API_URL" validate:"omitempty,url"`
	APIRetries     int    `validate:"min=0"`
	APITimeout     time.Duration

	logger     *slog.Logger
	loggerOnce sync.Once
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("CAMPAIGN_CONCURRENCY", 4)
	viper.SetDefault("BOOKINGS_API_URL", "")
	viper.SetDefault("PRICING_API_URL", "")
	viper.SetDefault("PAYERS_API_URL", "")
	viper.SetDefault("API_RETRIES", 3)
	viper.SetDefault("API_TIMEOUT", "30s")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.CampaignConcurrency = viper.GetInt("CAMPAIGN_CONCURRENCY")
	if cfg.CampaignConcurrency < 1 {
		cfg.CampaignConcurrency = 1
		log.Println("Warning: CAMPAIGN_CONCURRENCY must be at least 1. Defaulting to 1.")
	}

	cfg.BookingsAPIURL = viper.GetString("BOOKINGS_API_URL")
	cfg.PricingAPIURL = viper.GetString("PRICING_API_URL")
	cfg.PayersAPIURL = viper.GetString("PAYERS_API_URL")
	if cfg.BookingsAPIURL == "" {
		log.Println("Warning: BOOKINGS_API_URL not set. Campaign runs will not function.")
	}
	if cfg.PricingAPIURL == "" {
		log.Println("Warning: PRICING_API_URL not set. Campaign runs will not function.")
	}
	if cfg.PayersAPIURL == "" {
		log.Println("Warning: PAYERS_API_URL not set. Campaign runs will not function.")
	}

	cfg.APIRetries = viper.GetInt("API_RETRIES")
	if cfg.APIRetries < 0 {
		cfg.APIRetries = 0
	}

	timeoutStr := viper.GetString("API_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		if timeoutStr != "" {
			log.Printf("Warning: Invalid value for API_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout.String())
		}
	}
	cfg.APITimeout = timeout

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Logger returns the process-wide structured logger: JSON in production,
// text otherwise.
func (c *Config) Logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		if c.IsProduction {
			c.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
		} else {
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
	})
	return c.logger
}
