package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string

	JWTSecret string
	JWTExpiry time.Duration

	LogLevel  string
	LogFormat string
}

// Load arma la config desde env (godotenv ya corrió en main).
// Sin DatabaseDSN el server arranca con repos in-memory (modo dev).
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseDSN: getEnv("DB_DSN", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTExpiry:   24 * time.Hour,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}
}

// IsProduction: en prod exigimos JWT_SECRET (sin modo dev header).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
