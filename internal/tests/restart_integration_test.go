package tests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/respserver"
	"github.com/yndnr/respkv/internal/storage"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// node is one server process worth of components.
type node struct {
	store   *memory.Shared
	snap    *storage.Snapshotter
	resp    *respserver.Server
	admin   *httpserver.Server
	metrics *metric.Registry
}

func startNode(t *testing.T, dir string) *node {
	t.Helper()
	log := logger.Nop()
	ctx := context.Background()

	metrics := metric.NewRegistry()
	store := memory.NewShared(memory.New(memory.WithExpireObserver(metrics.AddKeysExpired)))
	if err := metrics.WatchKeyspace(store.Len); err != nil {
		t.Fatalf("WatchKeyspace() error = %v", err)
	}

	cfg := storage.DefaultSnapshotConfig(dir)
	cfg.SyncWrites = false
	snap, err := storage.OpenSnapshotter(cfg, log, storage.WithSnapshotMetrics(metrics))
	if err != nil {
		t.Fatalf("OpenSnapshotter() error = %v", err)
	}
	if _, err := snap.Load(ctx, store.Restore); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	respCfg := respserver.DefaultConfig()
	respCfg.Address = "127.0.0.1:0"
	resp := respserver.New(respCfg,
		respserver.NewEngine(store, respserver.WithMetrics(metrics)),
		respserver.WithLogger(log), respserver.WithRegistry(metrics))
	if err := resp.Start(ctx); err != nil {
		t.Fatalf("resp Start() error = %v", err)
	}

	admin := httpserver.New("127.0.0.1:0", httpserver.NewRouter(httpserver.RouterConfig{
		Metrics: metrics,
		Keys:    store.Len,
		Logger:  log,
	}), log)
	if err := admin.Start(); err != nil {
		t.Fatalf("admin Start() error = %v", err)
	}

	return &node{store: store, snap: snap, resp: resp, admin: admin, metrics: metrics}
}

// stop mirrors the shutdown hook order of respkv-server.
func (n *node) stop(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.admin.Shutdown(ctx); err != nil {
		t.Errorf("admin Shutdown() error = %v", err)
	}
	if err := n.resp.Shutdown(ctx); err != nil {
		t.Errorf("resp Shutdown() error = %v", err)
	}
	if _, err := n.snap.Save(ctx, n.store.Snapshot()); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := n.snap.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRestart_PersistsKeyspace(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir := t.TempDir()
	ctx := context.Background()

	first := startNode(t, dir)
	mgr := connection.NewManager(first.resp.Addr().String(), time.Second)

	steps := []struct {
		args []string
		want respserver.Reply
	}{
		{[]string{"SET", "keep", "forever"}, respserver.Simple("OK")},
		{[]string{"SET", "ttl", "for-a-while", "PX", "3600000"}, respserver.Simple("OK")},
		{[]string{"SET", "short", "gone", "PX", "1"}, respserver.Simple("OK")},
	}
	for _, s := range steps {
		got, err := mgr.Do(ctx, s.args...)
		if err != nil {
			t.Fatalf("Do(%v) error = %v", s.args, err)
		}
		if got != s.want {
			t.Fatalf("Do(%v) = %+v, want %+v", s.args, got, s.want)
		}
	}
	mgr.Disconnect()

	time.Sleep(20 * time.Millisecond)
	first.stop(t)

	second := startNode(t, dir)
	defer second.stop(t)
	mgr = connection.NewManager(second.resp.Addr().String(), time.Second)
	defer mgr.Disconnect()

	checks := map[string]respserver.Reply{
		"keep":  respserver.Simple("forever"),
		"ttl":   respserver.Simple("for-a-while"),
		"short": respserver.Null(),
	}
	for key, want := range checks {
		got, err := mgr.Do(ctx, "GET", key)
		if err != nil {
			t.Fatalf("GET %s error = %v", key, err)
		}
		if got != want {
			t.Errorf("GET %s = %+v, want %+v", key, got, want)
		}
	}

	resp, err := http.Get("http://" + second.admin.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()
	var health httpserver.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode /health: %v", err)
	}
	if health.Keys != 2 {
		t.Errorf("health.Keys = %d, want 2", health.Keys)
	}
}

func TestAdmin_MetricsReflectTraffic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	n := startNode(t, t.TempDir())
	defer n.stop(t)

	c, err := connection.Dial(context.Background(), n.resp.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	for _, args := range [][]string{{"PING"}, {"SET", "a", "1"}, {"GET", "a"}, {"GET", "b"}, {"NOPE"}} {
		if _, err := c.Do(args...); err != nil {
			t.Fatalf("Do(%v) error = %v", args, err)
		}
	}
	c.Close()

	resp, err := http.Get("http://" + n.admin.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, want := range []string{
		`respkv_commands_total{command="PING",result="ok"} 1`,
		`respkv_commands_total{command="GET",result="ok"} 1`,
		`respkv_commands_total{command="GET",result="nil"} 1`,
		`respkv_commands_total{command="unknown",result="error"} 1`,
		`respkv_keys 1`,
		`respkv_connections_total 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
