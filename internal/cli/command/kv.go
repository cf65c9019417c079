package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/server/respserver"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server is alive",
		Action: func(c *cli.Context) error {
			return send(c, "PING")
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("echo takes at most one MESSAGE")
			}
			return send(c, append([]string{"ECHO"}, c.Args().Slice()...)...)
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one KEY")
			}
			return send(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally expiring after --px milliseconds",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "expire after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("set requires KEY and VALUE")
			}
			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			if c.IsSet("px") {
				args = append(args, "PX", strconv.FormatUint(c.Uint64("px"), 10))
			}
			return send(c, args...)
		},
	}
}

// RawCommand returns the raw command.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send arbitrary tokens as one request",
		ArgsUsage: "TOKEN...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("raw requires at least one TOKEN")
			}
			return send(c, c.Args().Slice()...)
		},
	}
}

// send runs one request and prints the reply. An error reply yields ErrReply.
func send(c *cli.Context, args ...string) error {
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return fmt.Errorf("connection manager not initialized")
	}

	reply, err := mgr.Do(c.Context, args...)
	if err != nil {
		return err
	}
	if err := getFormatter(c).Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.Kind == respserver.KindError {
		return ErrReply
	}
	return nil
}
