// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Every component of the application declares its own Config struct with
// `env` tags and loads it independently:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
package config
