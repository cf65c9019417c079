// Package main provides the entry point for respkv-server.
//
// respkv-server serves an in-memory key-value store over a subset of the
// Redis protocol (PING, ECHO, SET, GET). It can optionally expose an admin
// HTTP endpoint, sweep expired keys and persist snapshots with Badger.
//
// Usage:
//
//	respkv-server [--config respkv.yaml] [--env-file .env] [--log-level debug]
//	respkv-server version
package main
