// Package output renders server replies for the CLI.
//
// The text format follows redis-cli: simple strings print as-is, errors are
// prefixed with "(error)" and null prints "(nil)". The JSON format emits one
// object per reply for scripting.
package output
