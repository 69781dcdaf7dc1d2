package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Provider:               ProviderSupabase,
		SupabaseURL:            "https://abc.supabase.co",
		SupabasePublishableKey: "anon",
		SupabaseServiceRoleKey: "service",
		SupabaseJWTSecret:      "secret",
		PlaceholderImageURL:    "https://picsum.photos/800/600",
		AssistantRateLimit:     0.5,
		AssistantRateBurst:     5,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"missing url":      func(c *Config) { c.SupabaseURL = "" },
		"missing key":      func(c *Config) { c.SupabasePublishableKey = "" },
		"missing service":  func(c *Config) { c.SupabaseServiceRoleKey = "" },
		"missing secret":   func(c *Config) { c.SupabaseJWTSecret = "" },
		"unknown provider": func(c *Config) { c.Provider = "mongo" },
		"no placeholder":   func(c *Config) { c.PlaceholderImageURL = "" },
		"zero burst":       func(c *Config) { c.AssistantRateBurst = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_MemoryNeedsNoSupabaseURL(t *testing.T) {
	c := validConfig()
	c.Provider = ProviderMemory
	c.SupabaseURL = ""
	c.SupabasePublishableKey = ""
	c.SupabaseServiceRoleKey = ""
	assert.NoError(t, c.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PROVIDER", "MEMORY")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://santy.lab, http://localhost:5173 ,")
	t.Setenv("SUMMARY_CACHE_TTL", "1m")
	t.Setenv("ASSISTANT_RATE_BURST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderMemory, cfg.Provider)
	assert.Equal(t, []string{"https://santy.lab", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, 5, cfg.AssistantRateBurst)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.False(t, cfg.IsProduction())
}
