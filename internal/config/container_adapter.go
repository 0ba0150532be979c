package config

import (
	"github.com/garyjia/lecturer-claims/internal/container"
	"github.com/garyjia/lecturer-claims/pkg/utils"
)

// ToContainerConfig converts the application Config to a container.Config.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Storage: container.StorageConfig{
			DocumentsDir:      c.Storage.DocumentsDir,
			SweepInterval:     c.Storage.SweepInterval,
			OrphanGracePeriod: c.Storage.OrphanGracePeriod,
		},
		Server: container.ServerConfig{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			ReadTimeout:     c.Server.ReadTimeout,
			WriteTimeout:    c.Server.WriteTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
			MaxUploadBytes:  c.Server.MaxUploadBytes,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
			TokenTTL:  c.Auth.TokenTTL,
			Issuer:    c.Auth.Issuer,
		},
		Report: container.ReportConfig{
			Institution: c.Report.Institution,
		},
	}
}

// ToLoggerConfig converts the logger section for utils.NewLogger.
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
