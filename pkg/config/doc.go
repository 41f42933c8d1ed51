// Package config loads application configuration from the environment into
// typed structs.
//
// It wraps github.com/joho/godotenv (optional .env files, never overriding
// variables already set in the process) and github.com/caarlos0/env/v11
// (struct tags, defaults, nested prefixes, TextUnmarshaler fields).
//
// # Usage
//
//	type Config struct {
//	    Env  string        `env:"APP_ENV" envDefault:"development"`
//	    HTTP ServerConfig  `envPrefix:"HTTP_"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Load reads ".env" from the working directory when present. Use
// WithEnvFiles to read other files (missing files are an error then) and
// WithPrefix to namespace every variable.
//
// Each call parses afresh; callers hold on to the result. There is no
// package-level cache, so tests can load the same type under different
// environments.
package config
