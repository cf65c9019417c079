package command

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// ErrReply is returned by a command whose request got an error reply. The
// reply has already been printed.
var ErrReply = errors.New("server replied with an error")

const (
	metaManager   = "connMgr"
	metaFormatter = "formatter"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "command-line client for respkv",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			RawCommand(),
			REPLCommand(),
		},
		Before: before,
		After:  after,
		Action: replAction,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json",
			Value:   string(output.FormatText),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  string
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  c.String("output"),
		Timeout: c.Duration("timeout"),
	}
}

func before(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaManager] = connection.NewManager(flags.Server, flags.Timeout)
	c.App.Metadata[metaFormatter] = output.NewFormatter(format)
	return nil
}

func after(c *cli.Context) error {
	if mgr := GetConnectionManager(c); mgr != nil {
		mgr.Disconnect()
	}
	return nil
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[metaManager].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

func getFormatter(c *cli.Context) output.Formatter {
	if f, ok := c.App.Metadata[metaFormatter].(output.Formatter); ok {
		return f
	}
	return &output.TextFormatter{}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
