package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// LockTimeout bounds how long a posting waits for a contended account
	// row lock before the request fails as retryable.
	LockTimeout time.Duration

	// RedisAddr enables the balance read cache when set. Empty disables it.
	RedisAddr string
	CacheTTL  time.Duration

	// RateLimit uses the "<count>-<period>" notation, e.g. "300-M".
	RateLimit string

	// Reservation sweeper. Disabled unless SweeperEnabled is set.
	SweeperEnabled  bool
	SweeperDeadline time.Duration
	SweeperInterval time.Duration

	MigrationsPath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("LOCK_TIMEOUT", "3s")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("CACHE_TTL", "1m")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("SWEEPER_ENABLED", false)
	viper.SetDefault("SWEEPER_DEADLINE", "24h")
	viper.SetDefault("SWEEPER_INTERVAL", "10m")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.LockTimeout = parseDurationOr("LOCK_TIMEOUT", 3*time.Second)
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.CacheTTL = parseDurationOr("CACHE_TTL", time.Minute)
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.SweeperEnabled = viper.GetBool("SWEEPER_ENABLED")
	cfg.SweeperDeadline = parseDurationOr("SWEEPER_DEADLINE", 24*time.Hour)
	cfg.SweeperInterval = parseDurationOr("SWEEPER_INTERVAL", 10*time.Minute)
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
