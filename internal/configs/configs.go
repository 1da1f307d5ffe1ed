/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values are read from operating system environment variables (optionally pre-populated from a
local .env file), covering the running environment, port, CORS allowed origins, token signing,
the identity store and the chat coordinator's queue limits.
*/
package configs

import (
	"fmt"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	LogLevel    string

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// Identity Directory Settings
	DatabaseDSN string
	SeedUsers   bool

	// Chat Coordinator Settings
	OutboundQueueSize int
	MaxMessageBytes   int
}

// environment mirrors the raw environment variables and their defaults.
type environment struct {
	Environment       string `env:"ENVIRONMENT,default=development"`
	Port              int    `env:"PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL"`
	AllowedOrigins    string `env:"ALLOWED_ORIGINS"`
	JWTSecret         string `env:"JWT_SECRET"`
	DatabaseDSN       string `env:"DATABASE_URL"`
	SeedUsers         bool   `env:"SEED_USERS,default=true"`
	OutboundQueueSize int    `env:"OUTBOUND_QUEUE_SIZE,default=256"`
	MaxMessageBytes   int    `env:"MAX_MESSAGE_BYTES,default=5000"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads a .env file when one is present, then parses the application
// configuration from environment variables and validates it.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	var raw environment
	if _, err := env.UnmarshalFromEnviron(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg := &AppConfig{
		Environment:       raw.Environment,
		Port:              raw.Port,
		LogLevel:          raw.LogLevel,
		JWTSecret:         raw.JWTSecret,
		DatabaseDSN:       raw.DatabaseDSN,
		SeedUsers:         raw.SeedUsers,
		OutboundQueueSize: raw.OutboundQueueSize,
		MaxMessageBytes:   raw.MaxMessageBytes,
	}

	if err := cfg.normalize(raw.AllowedOrigins); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize fills derived fields and enforces the constraints env tags cannot express.
func (c *AppConfig) normalize(originsRaw string) error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	c.AllowedOrigins = []string{}
	for _, origin := range strings.Split(originsRaw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			c.AllowedOrigins = append(c.AllowedOrigins, trimmed)
		}
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", c.Environment)
		}
		c.JWTSecret = "your_default_insecure_secret_key_change_me"
	}

	if c.OutboundQueueSize < 1 {
		return fmt.Errorf("OUTBOUND_QUEUE_SIZE must be positive, got %d", c.OutboundQueueSize)
	}

	if c.MaxMessageBytes < 1 {
		return fmt.Errorf("MAX_MESSAGE_BYTES must be positive, got %d", c.MaxMessageBytes)
	}

	return nil
}
