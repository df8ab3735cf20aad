package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata" // DB_TIMEZONE must load on hosts without zoneinfo

	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Billing   BillingConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level string
}

// BillingConfig holds the store's pricing rules. Percentages are kept as
// strings so they parse exactly into decimals.
type BillingConfig struct {
	TaxRatePercent     string
	MaxDiscountPercent string
	InvoicePrefix      string
	InvoiceNumberWidth int
	IdempotencyTTL     time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pharmacy-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pharmacy_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BILLING_TAX_RATE_PERCENT", "18")
	viper.SetDefault("BILLING_MAX_DISCOUNT_PERCENT", "20")
	viper.SetDefault("BILLING_INVOICE_PREFIX", "INV")
	viper.SetDefault("BILLING_INVOICE_NUMBER_WIDTH", 5)
	viper.SetDefault("BILLING_IDEMPOTENCY_TTL_HOURS", 24)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Billing: BillingConfig{
			TaxRatePercent:     viper.GetString("BILLING_TAX_RATE_PERCENT"),
			MaxDiscountPercent: viper.GetString("BILLING_MAX_DISCOUNT_PERCENT"),
			InvoicePrefix:      viper.GetString("BILLING_INVOICE_PREFIX"),
			InvoiceNumberWidth: viper.GetInt("BILLING_INVOICE_NUMBER_WIDTH"),
			IdempotencyTTL:     time.Duration(viper.GetInt("BILLING_IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location loads the store's timezone. Calendar dates in report filters are
// read in it, the same zone the database session uses.
func (c *DatabaseConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Policy parses the configured rates into a pricing policy.
func (c *BillingConfig) Policy() (pricing.Policy, error) {
	rate, err := decimal.NewFromString(c.TaxRatePercent)
	if err != nil {
		return pricing.Policy{}, fmt.Errorf("invalid BILLING_TAX_RATE_PERCENT %q: %w", c.TaxRatePercent, err)
	}
	if rate.IsNegative() {
		return pricing.Policy{}, fmt.Errorf("BILLING_TAX_RATE_PERCENT must not be negative, got %s", rate)
	}

	maxDiscount, err := decimal.NewFromString(c.MaxDiscountPercent)
	if err != nil {
		return pricing.Policy{}, fmt.Errorf("invalid BILLING_MAX_DISCOUNT_PERCENT %q: %w", c.MaxDiscountPercent, err)
	}
	if maxDiscount.IsNegative() || maxDiscount.GreaterThan(decimal.NewFromInt(100)) {
		return pricing.Policy{}, fmt.Errorf("BILLING_MAX_DISCOUNT_PERCENT must be between 0 and 100, got %s", maxDiscount)
	}

	return pricing.Policy{
		Tax:                pricing.NewSplitTaxConfig(rate),
		MaxDiscountPercent: maxDiscount,
	}, nil
}
