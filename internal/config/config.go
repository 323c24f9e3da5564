// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "dev-secret-key-change-in-production"
	defaultAdminPassword = "admin123"
)

// Config holds application configuration values.
type Config struct {
	Env            string  `mapstructure:"APP_ENV"`
	Port           string  `mapstructure:"PORT"`
	DatabaseURL    string  `mapstructure:"DATABASE_URL"`
	SessionSecret  string  `mapstructure:"SESSION_SECRET"`
	AdminEmail     string  `mapstructure:"ADMIN_EMAIL"`
	AdminPassword  string  `mapstructure:"ADMIN_PASSWORD"`
	CORSOrigin     string  `mapstructure:"CORS_ORIGIN"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
	LogLevel       string  `mapstructure:"LOG_LEVEL"`
	TemplatesDir   string  `mapstructure:"TEMPLATES_DIR"`
	StaticDir      string  `mapstructure:"STATIC_DIR"`
	DocsDir        string  `mapstructure:"DOCS_DIR"`
	SiteURL        string  `mapstructure:"SITE_URL"`
}

var keys = []string{
	"APP_ENV", "PORT", "DATABASE_URL", "SESSION_SECRET", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	"CORS_ORIGIN", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL",
	"TEMPLATES_DIR", "STATIC_DIR", "DOCS_DIR", "SITE_URL",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, reading configuration from environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; bind them explicitly.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://ideas.db")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", defaultAdminPassword)
	v.SetDefault("CORS_ORIGIN", "")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("DOCS_DIR", "./docs")
	v.SetDefault("SITE_URL", "http://localhost:8080")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Validate checks required values and refuses insecure defaults in production.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.AdminPassword == defaultAdminPassword {
			return errors.New("ADMIN_PASSWORD must be changed from the default value in production")
		}
	} else if len(c.SessionSecret) < 32 {
		logrus.Warn("SESSION_SECRET is shorter than 32 characters; use a stronger secret in production")
	}
	return nil
}
