// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. A .env file, loaded into the process environment with godotenv
//  4. Environment variables carrying the RESPKV_ prefix
//
// A Watcher reports changes to the configuration file so that settings
// which are safe to change at runtime, such as the log level, can be
// re-applied without a restart.
package confloader
