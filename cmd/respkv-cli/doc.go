// Package main provides the entry point for respkv-cli.
//
// respkv-cli sends single commands to a respkv server or, when run without
// a command, opens an interactive REPL.
//
// Usage:
//
//	respkv-cli [--server host:port] [--output text|json] COMMAND [ARGS]
//	respkv-cli set --px 5000 session:1 alice
package main
