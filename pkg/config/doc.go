// Package config loads application configuration from environment
// variables into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// LoadEnv reads one or more .env files into the process environment, and
// Load parses the environment into any struct with env tags, caching each
// configuration type so it is parsed at most once per process. MustLoad
// and MustLoadEnv panic on failure, for configuration the service cannot
// start without.
package config
