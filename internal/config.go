package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
	BCryptCost          int           `mapstructure:"bcrypt_cost"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

func (c *Config) Validate() error {
	if c.Database.Source == "" {
		return errors.New("database.source is required")
	}
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("http_server.port must be positive")
	}
	return nil
}

// LoadConfigFromEnv builds a Config from environment variables for container
// deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         envInt("SERVER_PORT", 8080),
			BaseURL:      os.Getenv("SERVER_BASE_URL"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  envDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          os.Getenv("DATABASE_SOURCE"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 2*time.Hour),
		},
		Security: SecurityConfig{
			JWTSecret:           os.Getenv("JWT_SECRET"),
			AccessTokenDuration: envDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
			BCryptCost:          envInt("BCRYPT_COST", 10),
		},
		App: AppConfig{
			Environment: os.Getenv("APP_ENV"),
		},
	}
	return cfg
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
