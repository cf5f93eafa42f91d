package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	Environment         string
	StoreDriver         string
	StoreFile           string
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisPrefix         string
	JWTSecret           string
	TokenTTLMinutes     int
	SeedDefaultAccounts bool
	SeedAdminPassword   string
	MaxBodyBytes        int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		Environment:         getEnv("APP_ENV", "development"),
		StoreDriver:         getEnv("STORE_DRIVER", "file"),
		StoreFile:           getEnv("STORE_FILE", "hrm-data.json"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		RedisPrefix:         getEnv("REDIS_PREFIX", "hrm"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTLMinutes:     getEnvInt("TOKEN_TTL_MINUTES", 480),
		SeedDefaultAccounts: getEnvBool("SEED_DEFAULT_ACCOUNTS", true),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "123"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "file", "postgres", "redis":
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, file, postgres, redis")
	}
	if c.StoreDriver == "file" && strings.TrimSpace(c.StoreFile) == "" {
		return fmt.Errorf("STORE_FILE is required for the file store driver")
	}
	if c.StoreDriver == "postgres" && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres store driver")
	}
	if c.StoreDriver == "redis" && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis store driver")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.SeedDefaultAccounts && c.SeedAdminPassword == "123" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or SEED_DEFAULT_ACCOUNTS disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}
