package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Внешний фид результатов матчей.
	FeedEnabled      bool
	FeedBaseURL      string
	FeedAPIKey       string
	FeedPollInterval time.Duration

	// Cloudflare R2 (логотипы команд, аватары).
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		FeedBaseURL: os.Getenv("FEED_BASE_URL"),
		FeedAPIKey:  os.Getenv("FEED_API_KEY"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	cfg.FeedEnabled, err = parseBoolEnv("FEED_ENABLED", false)
	if err != nil {
		return nil, err
	}
	if cfg.FeedEnabled && cfg.FeedBaseURL == "" {
		return nil, fmt.Errorf("FEED_BASE_URL must be set when FEED_ENABLED is true")
	}

	intervalStr := os.Getenv("FEED_POLL_INTERVAL")
	if intervalStr == "" {
		intervalStr = "30s"
	}
	cfg.FeedPollInterval, err = time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_POLL_INTERVAL environment variable: %w", err)
	}
	if cfg.FeedPollInterval < time.Second {
		return nil, fmt.Errorf("FEED_POLL_INTERVAL must be at least 1s, got %v", cfg.FeedPollInterval)
	}

	return cfg, nil
}

// R2Configured reports whether all object-store settings are present.
// Без них сервис работает, но загрузка логотипов отключена.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func parseBoolEnv(name string, fallback bool) (bool, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return parsed, nil
}
