// Package config loads application configuration from YAML with environment
// variable overrides (HOMEAUTO_* pattern) and validation.
package config
