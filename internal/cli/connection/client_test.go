package connection

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/server/respserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

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

func TestClient_Do(t *testing.T) {
	addr := startServer(t)
	c, err := Dial(context.Background(), addr, 0)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if c.Addr() != addr {
		t.Errorf("Addr() = %q, want %q", c.Addr(), addr)
	}

	tests := []struct {
		name string
		args []string
		want respserver.Reply
	}{
		{"ping", []string{"PING"}, respserver.Simple("PONG")},
		{"echo", []string{"ECHO", "hi there"}, respserver.Simple("hi there")},
		{"get missing", []string{"GET", "k"}, respserver.Null()},
		{"set", []string{"SET", "k", "v"}, respserver.Simple("OK")},
		{"get", []string{"GET", "k"}, respserver.Simple("v")},
		{"unknown", []string{"FLUSHALL"}, respserver.Error("ERR unknown command 'FLUSHALL'")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Do(tt.args...)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Do(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestClient_DoTokens_NullArgument(t *testing.T) {
	c, err := Dial(context.Background(), startServer(t), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	got, err := c.DoTokens([]respserver.Token{respserver.Bulk("GET"), respserver.NullToken()})
	if err != nil {
		t.Fatalf("DoTokens() error = %v", err)
	}
	if got.Kind != respserver.KindError {
		t.Errorf("DoTokens() = %+v, want error reply", got)
	}
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(context.Background(), addr, time.Second); err == nil {
		t.Fatal("Dial() expected error for closed port")
	}
}

func TestClient_ServerGone(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	c, err := Dial(context.Background(), ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if _, err := c.Do("PING"); err == nil {
		t.Error("Do() expected error when server closes the connection")
	}
}
