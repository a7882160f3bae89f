package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MATCH_CACHE_TTL", "not-a-duration")
	t.Setenv("DEFAULT_MATCH_LIMIT", "abc")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("port=%q want=9090", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:9090" {
		t.Fatalf("base url=%q", cfg.BaseURL)
	}
	if cfg.MatchCacheTTL != 5*time.Minute {
		t.Fatalf("invalid duration should fall back to default, got %v", cfg.MatchCacheTTL)
	}
	if cfg.DefaultMatchLimit != 20 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.DefaultMatchLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:       "development",
			JWTSecret:         "secret",
			DatabaseURL:       "postgres://localhost/db",
			DBMaxOpenConns:    10,
			DBMaxIdleConns:    2,
			DefaultMatchLimit: 20,
			MatchCacheTTL:     5 * time.Minute,
			EnableMatchCache:  true,
			PresignExpiry:     time.Hour,
			AWSRegion:         "eu-west-2",
			S3BucketName:      "bucket",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"default secret in production", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "your-super-secret-key-change-this-in-production"
		}, true},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, true},
		{"idle above open", func(c *Config) { c.DBMaxIdleConns = 20 }, true},
		{"s3 without bucket", func(c *Config) { c.UseS3 = true; c.S3BucketName = "" }, true},
		{"limit too large", func(c *Config) { c.DefaultMatchLimit = 500 }, true},
		{"cache outlives presigned urls", func(c *Config) {
			c.UseS3 = true
			c.MatchCacheTTL = 2 * time.Hour
		}, true},
		{"cache disabled ignores ttl", func(c *Config) {
			c.UseS3 = true
			c.EnableMatchCache = false
			c.MatchCacheTTL = 2 * time.Hour
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
