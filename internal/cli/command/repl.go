package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/repl"
	"github.com/yndnr/respkv/internal/server/respserver"
)

// REPLCommand returns the repl command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "history file (default ~/.respkv/history, \"-\" disables)",
			},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return fmt.Errorf("connection manager not initialized")
	}

	history := repl.NewHistory()
	switch path := c.String("history"); path {
	case "":
	case "-":
		history = repl.NewHistoryFile("")
	default:
		history = repl.NewHistoryFile(path)
	}

	r := repl.New(
		func(ctx context.Context, args []string) (respserver.Reply, error) {
			return mgr.Do(ctx, args...)
		},
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithFormatter(getFormatter(c)),
		repl.WithHistory(history),
		repl.WithPrompt(mgr.Addr()),
	)
	return r.Run(c.Context)
}
