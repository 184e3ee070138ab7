// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env tags, with optional .env file
// support via godotenv for local development.
//
// Each component owns its Config struct (pkg/auth.TokenConfig, pkg/pg.Config,
// ...); this package only provides the loading mechanism. Configuration is
// read once at startup and treated as immutable afterwards.
package config
