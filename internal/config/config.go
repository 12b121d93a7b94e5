// Package config provides centralized configuration management for the importer
// and the sink service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
	"unicode/utf8"
)

// Config holds the importer configuration.
// All settings can be configured via environment variables or a .env file.
type Config struct {
	Import  ImportConfig
	Client  ClientConfig
	Logging LoggingConfig
}

// ImportConfig holds the pipeline settings.
type ImportConfig struct {
	// CSVIn is the path of the delimited movie file (required)
	CSVIn string `env:"CSV_IN" required:"true"`

	// URLOut is the endpoint receiving one movie per POST (required)
	URLOut string `env:"URL_OUT" required:"true"`

	// StopOnErrors aborts the run on the first failed record when nonzero (default: 0)
	StopOnErrors int `env:"STOP_ON_ERRORS" default:"0"`

	// Delimiter is the field delimiter of the input file (default: ;)
	Delimiter string `env:"CSV_DELIMITER" default:";"`

	// MaxConcurrent caps records processed at once, 0 for no cap (default: 0)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"0"`

	// RejectsOut is an optional path for a CSV of rows that were not imported
	RejectsOut string `env:"REJECTS_OUT"`
}

// StopOnError reports whether strict mode is on.
func (c ImportConfig) StopOnError() bool {
	return c.StopOnErrors != 0
}

// DelimiterRune returns the delimiter as a rune. Validate guarantees a single rune.
func (c ImportConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// ClientConfig holds HTTP client settings for submissions.
type ClientConfig struct {
	// Timeout bounds one submission round trip (default: 30s)
	Timeout time.Duration `env:"HTTP_TIMEOUT" default:"30s"`

	// APIKey is sent as X-API-Key with every submission when set
	APIKey string `env:"URL_OUT_API_KEY"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SinkConfig holds the reference endpoint configuration.
type SinkConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SINK_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SINK_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SINK_READ_TIMEOUT" default:"15s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SINK_SHUTDOWN_TIMEOUT" default:"10s"`

	// APIKeys is a comma-separated list of accepted X-API-Key values.
	// Empty leaves the movie routes open.
	APIKeys []string `env:"SINK_API_KEYS"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty keeps movies in memory
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
