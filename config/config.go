package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config хранит все настройки приложения, прочитанные из окружения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Cloudflare R2 (экспорт сезонов). Поля необязательны: без них
	// приложение стартует, но экспорт возвращает ошибку.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load читает .env (если есть) и собирает конфигурацию.
func Load() (*Config, error) {
	// .env удобен локально; в продакшене переменные приходят из окружения.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("environment variable DATABASE_URL is required")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET_KEY is required")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		cfg.ServerPort = 8080
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", portStr, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("SERVER_PORT %d out of range", port)
		}
		cfg.ServerPort = port
	}

	return cfg, nil
}

// R2Configured сообщает, заданы ли все обязательные поля хранилища.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" &&
		c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" &&
		c.R2PublicBaseURL != ""
}
