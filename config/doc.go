// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the gateway configuration structure
// including server settings, route table, rate limiting, authentication, and
// proxy timeouts, and validates all of it eagerly at startup.
package config
