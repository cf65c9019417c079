package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

type logSection struct {
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// startWatching watches path and forwards every callback path to the
// returned channel.
func startWatching(t *testing.T, path string) <-chan string {
	t.Helper()
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	changed := make(chan string, 16)
	w.OnChange(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})
	w.StartAsync()
	time.Sleep(50 * time.Millisecond)
	return changed
}

func waitChange(t *testing.T, changed <-chan string) string {
	t.Helper()
	select {
	case p := <-changed:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification within 2s")
		return ""
	}
}

func TestWatcher_ReloadSeesNewLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	writeConfig(t, path, "log:\n  level: info\n")
	changed := startWatching(t, path)

	writeConfig(t, path, "log:\n  level: debug\n")
	got := waitChange(t, changed)

	var cfg logSection
	if err := NewLoader(WithConfigFile(got)).Load(&cfg); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("reloaded log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestWatcher_ReplacedByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respkv.yaml")
	writeConfig(t, path, "log:\n  level: info\n")
	changed := startWatching(t, path)

	tmp := filepath.Join(dir, ".respkv.yaml.swp")
	writeConfig(t, tmp, "log:\n  level: warn\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if got := waitChange(t, changed); filepath.Base(got) != "respkv.yaml" {
		t.Errorf("changed path = %q, want respkv.yaml", got)
	}
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	changed := startWatching(t, path)

	writeConfig(t, path, "log:\n  level: error\n")

	if got := waitChange(t, changed); filepath.Base(got) != "respkv.yaml" {
		t.Errorf("changed path = %q, want respkv.yaml", got)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respkv.yaml")
	writeConfig(t, path, "log:\n  level: info\n")
	changed := startWatching(t, path)

	writeConfig(t, filepath.Join(dir, "snapshot.lock"), "x")

	select {
	case p := <-changed:
		t.Errorf("callback fired for unwatched file %q", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Watching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respkv.yaml")

	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"same path", path, true},
		{"uncleaned path", filepath.Join(dir, ".", "respkv.yaml"), true},
		{"sibling", filepath.Join(dir, "other.yaml"), false},
		{"other dir", filepath.Join(dir, "sub", "respkv.yaml"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.watching(tt.in); got != tt.want {
				t.Errorf("watching(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing", "respkv.yaml")); err == nil {
		t.Error("Watch() should fail when the directory does not exist")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(WithWatcherLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
