package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string `validate:"required"`
	Port               string `validate:"required,numeric"`
	IsProduction       bool
	EnableDBCheck      bool
	RunMigrations      bool
	JWTSecret          string                   `validate:"required,min=16"`
	JWTIssuer          string                   `validate:"required"`
	RateLimit          string                   `validate:"required"`
	CORSAllowedOrigins []string                 `validate:"dive,url"`
	TaxAmountStrategy  domain.TaxAmountStrategy `validate:"oneof=live cached"`
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "invoice-company-currency")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("TAX_AMOUNT_STRATEGY", string(domain.TaxAmountsLive))
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		RateLimit:     v.GetString("RATE_LIMIT"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	strategy, ok := domain.ParseTaxAmountStrategy(strings.ToLower(v.GetString("TAX_AMOUNT_STRATEGY")))
	if !ok {
		return nil, fmt.Errorf("invalid TAX_AMOUNT_STRATEGY %q: want live or cached", v.GetString("TAX_AMOUNT_STRATEGY"))
	}
	cfg.TaxAmountStrategy = strategy

	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
