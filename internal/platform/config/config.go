package config

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Recognition quotas
	MaxDailyTacos int64
	MaxPerGift    int64

	// RateLimit uses the ulule/limiter format, e.g. "100-H".
	RateLimit string

	// AchievementRules is the threshold table the evaluator runs against.
	// Loaded once at startup; immutable afterwards.
	AchievementRules []domain.AchievementRule
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MAX_DAILY_TACOS", 5)
	viper.SetDefault("MAX_PER_GIFT", 5)
	viper.SetDefault("RATE_LIMIT", "100-H")
	viper.SetDefault("ACHIEVEMENT_RULES", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.MaxDailyTacos = viper.GetInt64("MAX_DAILY_TACOS")
	if cfg.MaxDailyTacos < 1 {
		cfg.MaxDailyTacos = 5
		log.Printf("Warning: Invalid MAX_DAILY_TACOS. Defaulting to %d.\n", cfg.MaxDailyTacos)
	}

	cfg.MaxPerGift = viper.GetInt64("MAX_PER_GIFT")
	if cfg.MaxPerGift < 1 || cfg.MaxPerGift > domain.MaxLedgerAmount {
		cfg.MaxPerGift = 5
		log.Printf("Warning: Invalid MAX_PER_GIFT. Defaulting to %d.\n", cfg.MaxPerGift)
	}

	rules, err := loadAchievementRules(viper.GetString("ACHIEVEMENT_RULES"))
	if err != nil {
		return nil, err
	}
	cfg.AchievementRules = rules

	return cfg, nil
}

// loadAchievementRules parses the ACHIEVEMENT_RULES JSON override, falling
// back to the built-in table when unset.
func loadAchievementRules(raw string) ([]domain.AchievementRule, error) {
	if raw == "" {
		return domain.DefaultAchievementRules(), nil
	}

	var rules []domain.AchievementRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("invalid ACHIEVEMENT_RULES: %w", err)
	}
	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("invalid ACHIEVEMENT_RULES: rule with empty id")
		}
		if r.MinGiven <= 0 && r.MinReceived <= 0 && r.MinTotal <= 0 {
			return nil, fmt.Errorf("invalid ACHIEVEMENT_RULES: rule %s has no threshold", r.ID)
		}
	}
	return rules, nil
}
