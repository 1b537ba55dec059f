package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	GeminiAPIKey            string
	GeminiBaseURL           string
	GeminiGenModel          string
	GeminiVisionModel       string
	GeminiTTSModel          string
	GeminiRequestsPerSecond float64

	VisionServiceURL string

	MaxSessions        int
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration

	RenderPageImages bool
	DefaultLanguage  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present, without overriding
// variables already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:            mustEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:           mustEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiGenModel:          mustEnv("GEMINI_GEN_MODEL", "gemini-2.0-flash"),
		GeminiVisionModel:       mustEnv("GEMINI_VISION_MODEL", "gemini-2.0-flash"),
		GeminiTTSModel:          mustEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiRequestsPerSecond: mustEnvFloat("GEMINI_REQUESTS_PER_SECOND", 2.0),

		VisionServiceURL: mustEnv("VISION_SERVICE_URL", "http://localhost:8090"),

		MaxSessions:        mustEnvInt("MAX_SESSIONS", 1000),
		SessionIdleTimeout: mustEnvDuration("SESSION_IDLE_TIMEOUT", time.Hour),
		SweepInterval:      mustEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		RenderPageImages: mustEnvBool("RENDER_PAGE_IMAGES", true),
		DefaultLanguage:  mustEnv("DEFAULT_LANGUAGE", "ar"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
