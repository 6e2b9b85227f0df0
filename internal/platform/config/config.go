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

	// LockTimeout bounds how long a ledger transaction waits for row locks.
	LockTimeout time.Duration

	// Cron specs for the background sweeps.
	PriceTickSpec       string
	SettlementSweepSpec string

	// FundFailurePayoutRatio is the per-unit multiplier paid to investors
	// when a fund settles as FAILURE. 1.0 means full principal back.
	FundFailurePayoutRatio float64

	// PriceModelSeed seeds the random walk. 0 means seed from the clock.
	PriceModelSeed int64

	// RateLimit is a limiter formatted rate string, e.g. "100-M".
	RateLimit string
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
	viper.SetDefault("PRICE_TICK_SPEC", "0 9 * * 1-5")
	viper.SetDefault("SETTLEMENT_SWEEP_SPEC", "30 0 * * *")
	viper.SetDefault("FUND_FAILURE_PAYOUT_RATIO", 1.0)
	viper.SetDefault("PRICE_MODEL_SEED", 0)
	viper.SetDefault("RATE_LIMIT", "100-M")

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

	lockTimeoutStr := viper.GetString("LOCK_TIMEOUT")
	lockTimeout, err := time.ParseDuration(lockTimeoutStr)
	if err != nil || lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
		log.Printf("Warning: Invalid value for LOCK_TIMEOUT ('%s'). Defaulting to %s.\n", lockTimeoutStr, lockTimeout)
	}
	cfg.LockTimeout = lockTimeout

	cfg.PriceTickSpec = viper.GetString("PRICE_TICK_SPEC")
	cfg.SettlementSweepSpec = viper.GetString("SETTLEMENT_SWEEP_SPEC")

	cfg.FundFailurePayoutRatio = viper.GetFloat64("FUND_FAILURE_PAYOUT_RATIO")
	if cfg.FundFailurePayoutRatio < 0 {
		log.Printf("Warning: FUND_FAILURE_PAYOUT_RATIO is negative (%v). Defaulting to 1.0.\n", cfg.FundFailurePayoutRatio)
		cfg.FundFailurePayoutRatio = 1.0
	}

	cfg.PriceModelSeed = viper.GetInt64("PRICE_MODEL_SEED")
	if cfg.PriceModelSeed == 0 {
		cfg.PriceModelSeed = time.Now().UnixNano()
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
