package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ProviderSupabase = "supabase"
	ProviderMemory   = "memory"
)

type Config struct {
	// Provider selects the persistence/auth backend: "supabase" or "memory".
	Provider string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseServiceRoleKey string // server-side table and storage writes
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database (direct Postgres connection, used for migrations)
	DatabaseURL string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Catalogue
	PlaceholderImageURL string

	// Seed admin account, used by the memory provider only
	AdminName     string
	AdminEmail    string
	AdminPassword string

	// Redis cache for the catalogue summary; empty disables caching
	RedisURL        string
	SummaryCacheTTL time.Duration

	// Assistant rate limit per client IP
	AssistantRateLimit float64
	AssistantRateBurst int

	// Server
	Port           string
	Environment    string
	BaseURL        string
	AllowedOrigins []string
	LogLevel       string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Provider: strings.ToLower(getEnv("PROVIDER", ProviderSupabase)),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "project-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "https://picsum.photos/800/600"),

		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		SummaryCacheTTL: getEnvAsDuration("SUMMARY_CACHE_TTL", 30*time.Second),

		AssistantRateLimit: getEnvAsFloat("ASSISTANT_RATE_LIMIT", 0.5),
		AssistantRateBurst: getEnvAsInt("ASSISTANT_RATE_BURST", 5),

		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabasePublishableKey == "" {
			return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
		}
		if c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("PROVIDER must be %q or %q, got %q", ProviderSupabase, ProviderMemory, c.Provider)
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.PlaceholderImageURL == "" {
		return fmt.Errorf("PLACEHOLDER_IMAGE_URL must not be empty")
	}
	if c.AssistantRateLimit <= 0 || c.AssistantRateBurst <= 0 {
		return fmt.Errorf("ASSISTANT_RATE_LIMIT and ASSISTANT_RATE_BURST must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid number, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
