package config

import (
	"os"
	"strconv"
)

// Config holds the tune generator configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Rendering
	SampleRate         int     // output sample rate in Hz
	OutputDir          string  // where generated tracks are written
	MaxDurationSeconds float64 // longest track a request may ask for
	RenderWorkers      int     // parallel renders in batch mode

	// HTTP rate limiting for render requests
	RateLimitRPS   float64
	RateLimitBurst int

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		SampleRate:         getEnvInt("SAMPLE_RATE", 44100),
		OutputDir:          getEnv("OUTPUT_DIR", "."),
		MaxDurationSeconds: getEnvFloat("MAX_DURATION_SECONDS", 600),
		RenderWorkers:      getEnvInt("RENDER_WORKERS", 4),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 4),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
