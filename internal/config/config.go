package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Database
	DatabaseURL   string
	MigrationsDir string
	// Sessions
	SessionTTL time.Duration
	// Seed the in-memory catalog when no database is configured
	SeedDemoData bool
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:          getEnvDefault("PORT", "8080"),
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		DatabaseURL:   os.Getenv("DB_URL"),
		MigrationsDir: getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		SessionTTL:    time.Duration(getEnvIntDefault("SESSION_TTL_MINUTES", 30)) * time.Minute,
		SeedDemoData:  getEnvBoolDefault("SEED_DEMO_DATA", true),
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
