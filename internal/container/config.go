// Package container provides dependency injection and lifecycle management
// for the lecturer claims service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Storage configuration
	Storage StorageConfig

	// Server configuration
	Server ServerConfig

	// Auth configuration
	Auth AuthConfig

	// Report configuration
	Report ReportConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// StorageConfig holds supporting document storage settings.
type StorageConfig struct {
	// DocumentsDir is the base directory for uploaded documents
	DocumentsDir string

	// SweepInterval between orphaned document sweeps; zero disables the sweeper
	SweepInterval time.Duration

	// OrphanGracePeriod is the minimum age of a document before it can be swept
	OrphanGracePeriod time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxUploadBytes caps the size of a supporting document
	MaxUploadBytes int64
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 tokens
	JWTSecret string

	// TokenTTL is the lifetime of issued tokens
	TokenTTL time.Duration

	// Issuer is the expected iss claim; empty disables the check
	Issuer string
}

// ReportConfig holds report export settings.
type ReportConfig struct {
	// Institution is written into exported workbook properties
	Institution string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/claims.db",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			DocumentsDir:      "data/documents",
			SweepInterval:     time.Hour,
			OrphanGracePeriod: 24 * time.Hour,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
			Issuer:   "lecturer-claims",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.DocumentsDir == "" {
		return fmt.Errorf("storage.documents_dir is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Storage.SweepInterval > 0 && c.Storage.OrphanGracePeriod <= 0 {
		return fmt.Errorf("storage.orphan_grace_period must be positive when sweeping is enabled")
	}
	return nil
}
