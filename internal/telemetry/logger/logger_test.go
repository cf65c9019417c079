package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"TEXT", FormatText, false},
		{"console", FormatText, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() with unknown level should fail")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() with unknown format should fail")
	}
}

func TestNew_Format(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer

	jl, err := New(Config{Level: "info", Format: "json", Output: &jsonBuf})
	if err != nil {
		t.Fatalf("New(json) error = %v", err)
	}
	tl, err := New(Config{Level: "info", Format: "console", Output: &textBuf})
	if err != nil {
		t.Fatalf("New(console) error = %v", err)
	}

	jl.Info("resp server listening", "address", "127.0.0.1:6379")
	tl.Info("resp server listening", "address", "127.0.0.1:6379")

	var entry map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &entry); err != nil {
		t.Fatalf("json output is not JSON: %v (%q)", err, jsonBuf.String())
	}
	if entry["address"] != "127.0.0.1:6379" {
		t.Errorf("address = %v", entry["address"])
	}
	if !strings.Contains(textBuf.String(), "address=127.0.0.1:6379") {
		t.Errorf("text output = %q", textBuf.String())
	}
}

func TestSetLevel_AppliesToExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	conn := l.With("conn_id", "c1")
	t.Cleanup(func() { _ = SetLevel("info") })

	conn.Debug("command rejected")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %q", buf.String())
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if got := GetLevel(); got != "debug" {
		t.Errorf("GetLevel() = %q, want debug", got)
	}
	conn.Debug("command rejected")
	if !strings.Contains(buf.String(), `"conn_id":"c1"`) {
		t.Errorf("debug record missing after SetLevel: %q", buf.String())
	}

	buf.Reset()
	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	conn.Warn("protocol limit exceeded")
	if buf.Len() != 0 {
		t.Errorf("warn record written at error level: %q", buf.String())
	}
}

func TestSetLevel_UnknownKeepsCurrent(t *testing.T) {
	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	t.Cleanup(func() { _ = SetLevel("info") })

	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel(loud) should fail")
	}
	if got := GetLevel(); got != "warn" {
		t.Errorf("GetLevel() = %q, want warn", got)
	}
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	SetDefault(l)

	Warn("dotenv file not found, skipping", "path", ".env")
	if !strings.Contains(buf.String(), `"path":".env"`) {
		t.Errorf("Warn() did not reach the default logger: %q", buf.String())
	}

	SetDefault(Nop())
	buf.Reset()
	Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("Nop default wrote %q", buf.String())
	}
}
