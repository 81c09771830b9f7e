package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Storage
	StoreBackend  string // "postgres", "baas" or "memory"
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Identity / persistence BaaS
	BaaSBaseURL      string
	BaaSAnonKey      string
	SessionJWTSecret string

	// AI provider
	GeminiModelID     string
	GeminiAPIKey      string // optional server-level fallback key
	DiscoveryTimeout  time.Duration
	SuggestionTimeout time.Duration

	// Rate limiting
	RateLimitPerSecond float64
	RateLimitBurst     int

	// SendGrid feedback notifications
	SendGridAPIKey        string
	SendGridFromEmail     string
	SendGridFromName      string
	FeedbackNotifyAddress string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		StoreBackend:  strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "postgres"))),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		BaaSBaseURL:      strings.TrimRight(getEnv("BAAS_BASE_URL", ""), "/"),
		BaaSAnonKey:      getEnv("BAAS_ANON_KEY", ""),
		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),

		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		DiscoveryTimeout:  getEnvAsDuration("DISCOVERY_TIMEOUT", 3*time.Minute),
		SuggestionTimeout: getEnvAsDuration("SUGGESTION_TIMEOUT", 45*time.Second),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		SendGridAPIKey:        getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:     getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:      getEnv("SENDGRID_FROM_NAME", "Prospecta"),
		FeedbackNotifyAddress: getEnv("FEEDBACK_NOTIFY_ADDRESS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
