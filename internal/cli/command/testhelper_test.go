package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/server/respserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// startServer runs a real server on a random port for the test.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := respserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := respserver.New(cfg, respserver.NewEngine(memory.NewShared(memory.New())),
		respserver.WithLogger(logger.Nop()))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// run executes the app with args against addr and returns its stdout.
func run(t *testing.T, addr, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)

	argv := append([]string{"respkv-cli", "--server", addr}, args...)
	err := app.Run(argv)
	return out.String(), err
}
