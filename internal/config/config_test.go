package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Empty variables are treated as unset, so defaults apply.
	for _, k := range keys {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DatabaseType != "sqlite" || cfg.InsightProvider != "rule" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.AITimeout() != 30*time.Second || cfg.InsightCacheTTL() != 24*time.Hour {
		t.Errorf("durations = %v, %v", cfg.AITimeout(), cfg.InsightCacheTTL())
	}
	if !cfg.IsDev() || cfg.RemoteInsights() || cfg.TelegramEnabled() {
		t.Errorf("unexpected mode: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("INSIGHT_PROVIDER", "REMOTE")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("database type should be lower-cased, got %s", cfg.DatabaseType)
	}
	if !cfg.RemoteInsights() || cfg.DeepSeekAPIKey != "sk-test" {
		t.Errorf("remote provider not picked up: %+v", cfg)
	}
	if cfg.TelegramChatID != -100123 || !cfg.TelegramEnabled() {
		t.Errorf("telegram chat = %d", cfg.TelegramChatID)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseType:     "sqlite",
			DatabasePath:     "x.db",
			InsightProvider:  "rule",
			AITimeoutSeconds: 30,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"postgres without url", func(c *Config) { c.DatabaseType = "postgres" }, true},
		{"postgres with url", func(c *Config) { c.DatabaseType = "postgres"; c.DatabaseURL = "postgres://x" }, false},
		{"unknown database", func(c *Config) { c.DatabaseType = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DatabasePath = "" }, true},
		{"remote without key", func(c *Config) { c.InsightProvider = "remote" }, true},
		{"remote with key", func(c *Config) { c.InsightProvider = "remote"; c.DeepSeekAPIKey = "k" }, false},
		{"remote zero timeout", func(c *Config) {
			c.InsightProvider = "remote"
			c.DeepSeekAPIKey = "k"
			c.AITimeoutSeconds = 0
		}, true},
		{"unknown provider", func(c *Config) { c.InsightProvider = "gpt" }, true},
		{"negative ttl", func(c *Config) { c.InsightCacheTTLMinutes = -1 }, true},
		{"token without chat", func(c *Config) { c.TelegramBotToken = "t" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
