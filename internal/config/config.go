package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	MarketData MarketDataConfig `toml:"marketdata"`
	Logging    LoggingConfig    `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

// DSN returns the connection string in lib/pq key-value form.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MarketDataConfig contains quote source settings.
type MarketDataConfig struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// CacheTTL returns the quote cache time-to-live as a duration.
func (c MarketDataConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Load loads configuration with priority: defaults -> file -> env.
// An empty path skips the file step.
func Load(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies SMARTINVEST_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if host := os.Getenv("SMARTINVEST_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SMARTINVEST_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SMARTINVEST_DB_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("SMARTINVEST_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Database.Port = p
		}
	}
	if user := os.Getenv("SMARTINVEST_DB_USER"); user != "" {
		config.Database.User = user
	}
	if password := os.Getenv("SMARTINVEST_DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if name := os.Getenv("SMARTINVEST_DB_NAME"); name != "" {
		config.Database.Name = name
	}
	if apiKey := os.Getenv("SMARTINVEST_FINNHUB_API_KEY"); apiKey != "" {
		config.MarketData.APIKey = apiKey
	}
	if baseURL := os.Getenv("SMARTINVEST_FINNHUB_BASE_URL"); baseURL != "" {
		config.MarketData.BaseURL = baseURL
	}
	if level := os.Getenv("SMARTINVEST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
