// Package respserver implements the RESP key-value server: request decoding,
// command building, command execution and the per-connection loop.
//
// Supported commands are PING, ECHO, SET (with an optional millisecond
// expiry) and GET. Everything else is answered with an unknown command
// error.
package respserver
