package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds how long a graceful shutdown may take
	// before in-flight requests are abandoned.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
//
// Access and refresh tokens are signed with independent secrets so a leaked
// access secret cannot be used to forge refresh tokens. Both secrets fall
// back to insecure development defaults when unset; Load logs a warning
// whenever a default is in use.
type AuthConfig struct {
	AccessTokenSecret  string `mapstructure:"access_token_secret"  validate:"required,min=16"`
	RefreshTokenSecret string `mapstructure:"refresh_token_secret" validate:"required,min=16"`

	// Token lifetimes in minutes. Defaults: 15 minutes for access tokens,
	// 7 days (10080 minutes) for refresh tokens.
	AccessTokenLifetimeMinutes  int `mapstructure:"access_token_lifetime_minutes"  validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}
