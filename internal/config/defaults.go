package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "smartinvest",
			Name:    "smartinvest",
			SSLMode: "disable",
		},
		MarketData: MarketDataConfig{
			BaseURL:         "https://finnhub.io/api/v1",
			CacheTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
