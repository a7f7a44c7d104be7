package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration shared by both services.
type Config struct {
	DatabaseURL     string
	BusDatabaseURL  string
	Port            string
	IsProduction    bool
	JWTSecret       string
	RateLimit       string
	BusPollInterval time.Duration
	MigrationsDir   string
}

// LoadConfig loads configuration from environment variables and a .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("BUS_PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("BUS_POLL_INTERVAL", "2s")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	// The bus lives in a shared database; fall back to the service database
	// for single-database deployments.
	cfg.BusDatabaseURL = viper.GetString("BUS_PGSQL_URL")
	if cfg.BusDatabaseURL == "" {
		cfg.BusDatabaseURL = cfg.DatabaseURL
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	pollStr := viper.GetString("BUS_POLL_INTERVAL")
	poll, err := time.ParseDuration(pollStr)
	if err != nil {
		poll = 2 * time.Second
		log.Printf("Warning: Invalid value for BUS_POLL_INTERVAL ('%s'). Defaulting to %s\n", pollStr, poll)
	}
	cfg.BusPollInterval = poll

	cfg.MigrationsDir = viper.GetString("MIGRATIONS_DIR")

	return cfg, nil
}
