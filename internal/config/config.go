package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIURL      = "http://localhost:8000/api/auth"
	defaultHTTPTimeout = 30 * time.Second
	defaultRateLimit   = 10.0
)

type SessionBackend string

const (
	SessionBackendFile     SessionBackend = "file"
	SessionBackendRedis    SessionBackend = "redis"
	SessionBackendPostgres SessionBackend = "postgres"
)

// Config captures everything the client needs at startup.
type Config struct {
	APIURL         string
	HTTPTimeout    time.Duration
	RateLimit      float64
	UserAgent      string
	SessionBackend SessionBackend
	SessionFile    string
	LogLevel       string
	// LogFile receives log lines so they stay off the interactive prompt;
	// "stderr" keeps them on the terminal.
	LogFile string
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		APIURL:         strings.TrimRight(GetEnv("FITTRACK_API_URL", defaultAPIURL), "/"),
		HTTPTimeout:    getDurationEnv("FITTRACK_HTTP_TIMEOUT", defaultHTTPTimeout),
		RateLimit:      getFloatEnv("FITTRACK_RATE_LIMIT", defaultRateLimit),
		UserAgent:      GetEnv("FITTRACK_USER_AGENT", "fittrack/1.0"),
		SessionBackend: SessionBackend(strings.ToLower(GetEnv("FITTRACK_SESSION_BACKEND", string(SessionBackendFile)))),
		SessionFile:    GetEnv("FITTRACK_SESSION_FILE", defaultConfigPath("session.json")),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFile:        GetEnv("FITTRACK_LOG_FILE", defaultConfigPath("fittrack.log")),
	}
}

// RedisConfig returns host, port, password
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "localhost")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// DatabaseConfig returns host, port, user, password, database name
func DatabaseConfig() (string, string, string, string, string) {
	host := GetEnv("DB_HOST", "localhost")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "")
	password := GetEnv("DB_PASSWORD", "")
	name := GetEnv("DB_NAME", "fittrack")
	return host, port, user, password, name
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func defaultConfigPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fittrack", name)
}
