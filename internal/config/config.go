package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Store
	StoreDriver string `mapstructure:"STORE_DRIVER"` // memory | sqlite | postgres
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis report cache; empty disables it
	RedisURL       string        `mapstructure:"REDIS_URL"`
	ReportCacheTTL time.Duration `mapstructure:"REPORT_CACHE_TTL"`

	// Auth; empty secret leaves the API open
	JWTSecret string `mapstructure:"JWT_SECRET"`

	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"` // comma separated, "*" for any

	// Business
	DefaultCostRatio float64 `mapstructure:"DEFAULT_COST_RATIO"`
	PDFStoragePath   string  `mapstructure:"PDF_STORAGE_PATH"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "businesstracker.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REPORT_CACHE_TTL", 30*time.Second)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 1000)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DEFAULT_COST_RATIO", 0.7)
	v.SetDefault("PDF_STORAGE_PATH", "./reports")

	// Optional .env file for local development; a missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: STORE_DRIVER must be memory, sqlite or postgres, got %q", c.StoreDriver)
	}
	if c.DefaultCostRatio <= 0 || c.DefaultCostRatio > 1 {
		return fmt.Errorf("config: DEFAULT_COST_RATIO must be in (0, 1], got %v", c.DefaultCostRatio)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// CostRatio returns DefaultCostRatio as a decimal for money arithmetic.
func (c *Config) CostRatio() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultCostRatio)
}
