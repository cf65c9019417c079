// Package tests holds end-to-end tests that wire the server components the
// way respkv-server does.
package tests
