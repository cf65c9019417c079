// Package command defines the respkv-cli commands using urfave/cli/v2.
//
// Each command opens a connection through the session's connection.Manager,
// sends one request and formats the reply. Running the binary without a
// command starts the interactive REPL.
package command
