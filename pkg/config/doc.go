// Package config loads typed configuration structs from environment
// variables using caarlos0/env tags, with optional .env file support for
// local development via godotenv.
package config
