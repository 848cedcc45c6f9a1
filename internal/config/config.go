// Package config loads runtime settings for the API server.
//
// Values come from the process environment (a local .env file is loaded
// first by godotenv) layered over the defaults below.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	Schema     string
	SQLitePath string
	LogLevel   string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.Username, d.Password, d.Database, d.Port)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type Config struct {
	Port           int
	LogLevel       string
	AutoMigrate    bool
	AllowedOrigins []string
	Database       DatabaseConfig
	Auth           AuthConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("BLUEPRINT_DB_HOST", "localhost")
	v.SetDefault("BLUEPRINT_DB_PORT", "5432")
	v.SetDefault("BLUEPRINT_DB_USERNAME", "postgres")
	v.SetDefault("BLUEPRINT_DB_PASSWORD", "postgres")
	v.SetDefault("BLUEPRINT_DB_DATABASE", "tasks")
	v.SetDefault("BLUEPRINT_DB_SCHEMA", "")
	v.SetDefault("SQLITE_PATH", "data/tasks.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetInt("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		AutoMigrate:    v.GetBool("AUTO_MIGRATE"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("BLUEPRINT_DB_HOST"),
			Port:       v.GetString("BLUEPRINT_DB_PORT"),
			Username:   v.GetString("BLUEPRINT_DB_USERNAME"),
			Password:   v.GetString("BLUEPRINT_DB_PASSWORD"),
			Database:   v.GetString("BLUEPRINT_DB_DATABASE"),
			Schema:     v.GetString("BLUEPRINT_DB_SCHEMA"),
			SQLitePath: v.GetString("SQLITE_PATH"),
			LogLevel:   v.GetString("DB_LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("JWT_SECRET"),
			TokenTTL:   v.GetDuration("TOKEN_TTL"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %s", cfg.Auth.TokenTTL)
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
