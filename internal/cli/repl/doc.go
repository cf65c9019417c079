// Package repl provides the interactive mode of respkv-cli.
//
// Each input line is split into tokens (double quotes allow spaces and
// escapes, single quotes are literal) and sent as one request. Lines
// starting with "help", "history", "exit" or "quit" are handled locally.
package repl
