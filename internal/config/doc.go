// Package config defines the application configuration structure and
// handles loading configuration from environment variables and config files.
//
// Configuration is organized into logical groups (Server, Database, Auth)
// and validated after loading. Environment variables take precedence over
// config file values.
package config
