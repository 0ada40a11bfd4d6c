package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	DatabaseType  string `mapstructure:"DATABASE_TYPE"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabasePath  string `mapstructure:"DATABASE_PATH"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	InsightProvider  string `mapstructure:"INSIGHT_PROVIDER"`
	DeepSeekAPIKey   string `mapstructure:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL  string `mapstructure:"DEEPSEEK_BASE_URL"`
	DeepSeekModel    string `mapstructure:"DEEPSEEK_MODEL"`
	AITimeoutSeconds int    `mapstructure:"AI_TIMEOUT_SECONDS"`

	RedisURL               string `mapstructure:"REDIS_URL"`
	InsightCacheTTLMinutes int    `mapstructure:"INSIGHT_CACHE_TTL_MINUTES"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `mapstructure:"TELEGRAM_CHAT_ID"`
	ReportFontPath   string `mapstructure:"REPORT_FONT_PATH"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FILE",
	"DATABASE_TYPE", "DATABASE_URL", "DATABASE_PATH", "MIGRATIONS_DIR",
	"INSIGHT_PROVIDER", "DEEPSEEK_API_KEY", "DEEPSEEK_BASE_URL", "DEEPSEEK_MODEL", "AI_TIMEOUT_SECONDS",
	"REDIS_URL", "INSIGHT_CACHE_TTL_MINUTES",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "REPORT_FONT_PATH",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DATABASE_PATH", "data/child-health.db")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("INSIGHT_PROVIDER", "rule")
	v.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	v.SetDefault("DEEPSEEK_MODEL", "deepseek-chat")
	v.SetDefault("AI_TIMEOUT_SECONDS", 30)
	v.SetDefault("INSIGHT_CACHE_TTL_MINUTES", 24*60)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	cfg.InsightProvider = strings.ToLower(cfg.InsightProvider)
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RemoteInsights reports whether narratives come from the remote model.
func (c *Config) RemoteInsights() bool {
	return c.InsightProvider == "remote"
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

func (c *Config) InsightCacheTTL() time.Duration {
	return time.Duration(c.InsightCacheTTLMinutes) * time.Minute
}

// TelegramEnabled reports whether reports can be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Validate checks the combinations Load cannot express with defaults.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when DATABASE_TYPE is \"sqlite\"")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_TYPE is \"postgres\"")
		}
	default:
		return fmt.Errorf("DATABASE_TYPE must be \"sqlite\" or \"postgres\", got %q", c.DatabaseType)
	}

	switch c.InsightProvider {
	case "rule":
	case "remote":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required when INSIGHT_PROVIDER is \"remote\"")
		}
		if c.AITimeoutSeconds <= 0 {
			return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %d", c.AITimeoutSeconds)
		}
	default:
		return fmt.Errorf("INSIGHT_PROVIDER must be \"rule\" or \"remote\", got %q", c.InsightProvider)
	}

	if c.InsightCacheTTLMinutes < 0 {
		return fmt.Errorf("INSIGHT_CACHE_TTL_MINUTES must not be negative")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}
