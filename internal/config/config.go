package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPHost       string   `env:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort       int      `env:"HTTP_PORT" default:"8080"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" default:"127.0.0.1"`
	PageSize       int      `env:"PAGE_SIZE" default:"10"`

	// Database
	DatabaseURL    string `env:"DATABASE_URL" default:"sqlite://yamdb.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" default:"20"`

	// Authentication
	JWTSecret           string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL     time.Duration `env:"REFRESH_TOKEN_TTL" default:"168h"`
	ConfirmationCodeTTL time.Duration `env:"CONFIRMATION_CODE_TTL" default:"72h"`

	// Redis (confirmation code throttle, disabled when empty)
	RedisURL              string        `env:"REDIS_URL"`
	CodeRequestsPerWindow int           `env:"CODE_REQUESTS_PER_WINDOW" default:"5"`
	CodeRequestWindow     time.Duration `env:"CODE_REQUEST_WINDOW" default:"1h"`

	// Mail (console sender when SMTP_HOST is empty)
	SMTPHost          string  `env:"SMTP_HOST"`
	SMTPPort          int     `env:"SMTP_PORT" default:"587"`
	SMTPUsername      string  `env:"SMTP_USERNAME"`
	SMTPPassword      string  `env:"SMTP_PASSWORD"`
	MailFrom          string  `env:"MAIL_FROM" default:"yamdb@ya.ru"`
	MailRatePerSecond float64 `env:"MAIL_RATE_PER_SECOND" default:"2"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine, system env vars still apply
	_ = godotenv.Load(".env")

	config := &Config{}

	loadEnvString(&config.GoEnv, "GO_ENV", "development")

	// HTTP
	loadEnvString(&config.HTTPHost, "HTTP_HOST", "0.0.0.0")
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	loadEnvStringSlice(&config.TrustedProxies, "TRUSTED_PROXIES", []string{"127.0.0.1"})
	if err := loadEnvInt(&config.PageSize, "PAGE_SIZE", 10); err != nil {
		return nil, err
	}

	// Database
	loadEnvString(&config.DatabaseURL, "DATABASE_URL", "sqlite://yamdb.db")
	if err := loadEnvInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.ConfirmationCodeTTL, "CONFIRMATION_CODE_TTL", 72*time.Hour); err != nil {
		return nil, err
	}

	// Redis
	loadEnvString(&config.RedisURL, "REDIS_URL", "")
	if err := loadEnvInt(&config.CodeRequestsPerWindow, "CODE_REQUESTS_PER_WINDOW", 5); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.CodeRequestWindow, "CODE_REQUEST_WINDOW", time.Hour); err != nil {
		return nil, err
	}

	// Mail
	loadEnvString(&config.SMTPHost, "SMTP_HOST", "")
	if err := loadEnvInt(&config.SMTPPort, "SMTP_PORT", 587); err != nil {
		return nil, err
	}
	loadEnvString(&config.SMTPUsername, "SMTP_USERNAME", "")
	loadEnvString(&config.SMTPPassword, "SMTP_PASSWORD", "")
	loadEnvString(&config.MailFrom, "MAIL_FROM", "yamdb@ya.ru")
	if err := loadEnvFloat(&config.MailRatePerSecond, "MAIL_RATE_PER_SECOND", 2); err != nil {
		return nil, err
	}

	// Logging
	loadEnvString(&config.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&config.LogFormat, "LOG_FORMAT", "text")

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		// Trim whitespace from each element
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		errors = append(errors, "PAGE_SIZE must be between 1 and 100")
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") &&
		!strings.HasPrefix(c.DatabaseURL, "sqlite://") {
		errors = append(errors, "DATABASE_URL must start with postgres://, postgresql:// or sqlite://")
	}

	// signing key for both JWTs and confirmation codes
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ConfirmationCodeTTL <= 0 {
		errors = append(errors, "token TTLs must be positive")
	}
	if c.RedisURL != "" && (c.CodeRequestsPerWindow < 1 || c.CodeRequestWindow <= 0) {
		errors = append(errors, "CODE_REQUESTS_PER_WINDOW and CODE_REQUEST_WINDOW must be positive")
	}
	if c.SMTPHost != "" && (c.SMTPPort < 1 || c.SMTPPort > 65535) {
		errors = append(errors, "SMTP_PORT must be between 1 and 65535")
	}
	if c.MailRatePerSecond <= 0 {
		errors = append(errors, "MAIL_RATE_PER_SECOND must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
