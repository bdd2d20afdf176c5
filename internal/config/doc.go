// Package config loads and validates application configuration from an
// optional YAML file and WORKTRACK_-prefixed environment variables.
package config
