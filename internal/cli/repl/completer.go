package repl

import (
	"strings"

	"github.com/samber/lo"
)

// Commands known to the server, in help order.
var serverCommands = []string{"PING", "ECHO", "SET", "GET"}

var localCommands = []string{"help", "history", "exit", "quit"}

var usage = map[string]string{
	"PING":    "PING",
	"ECHO":    "ECHO message",
	"SET":     "SET key value [PX milliseconds]",
	"GET":     "GET key",
	"help":    "help [prefix]",
	"history": "history [substring]",
	"exit":    "exit",
	"quit":    "quit",
}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{commands: append(append([]string{}, serverCommands...), localCommands...)}
}

// Complete returns the commands starting with prefix, ignoring case.
// An empty prefix matches everything.
func (c *Completer) Complete(prefix string) []string {
	p := strings.ToUpper(prefix)
	return lo.Filter(c.commands, func(cmd string, _ int) bool {
		return strings.HasPrefix(strings.ToUpper(cmd), p)
	})
}

// Usage returns the usage lines for the commands matching prefix.
func (c *Completer) Usage(prefix string) []string {
	return lo.Map(c.Complete(prefix), func(cmd string, _ int) string {
		return usage[cmd]
	})
}
