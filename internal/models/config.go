package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Rates    RatesConfig
	Events   EventsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeoutMs   int
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigin      string
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JwtSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RatesConfig holds exchange rate cache settings
type RatesConfig struct {
	URL             string
	CacheTTL        time.Duration
	RetryInterval   time.Duration
	Timeout         time.Duration
	RefreshInterval time.Duration
	CurrenciesFile  string
}

// EventsConfig holds the optional AMQP publisher settings
type EventsConfig struct {
	AmqpURL  string
	Exchange string
	Queue    string
}
