package config

import (
	"fmt"
	"os"
	"strconv"
)

const defaultMaxUploadBytes = 32 << 20

type Config struct {
	DBSource       string
	Port           string
	Env            string
	LogLevel       string
	MaxUploadBytes int64
}

func Load() (*Config, error) {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	maxUpload := int64(defaultMaxUploadBytes)
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", raw)
		}
		maxUpload = n
	}

	return &Config{
		DBSource:       os.Getenv("DB_SOURCE"),
		Port:           port,
		Env:            env,
		LogLevel:       os.Getenv("LOG_LEVEL"),
		MaxUploadBytes: maxUpload,
	}, nil
}

// RequireDB fails when no database connection string is configured.
func (c *Config) RequireDB() error {
	if c.DBSource == "" {
		return fmt.Errorf("DB_SOURCE environment variable is required")
	}
	return nil
}
