// Package config defines the respkv-server configuration.
//
//   - spec.go: ServerConfig struct definition and its koanf keys
//   - default.go: default values
//   - verify.go: validation run after loading
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// an optional .env file and RESPKV_ environment variables.
package config
