package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface handed to every server component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Output formats accepted by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level, format and destination of log records. Empty
// Level and Format mean info and json. A nil Output means os.Stderr.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// level is shared by every logger built with New, so SetLevel takes effect
// on loggers that were already handed out.
var level = new(slog.LevelVar)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a case-insensitive level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	l, ok := levels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// ParseFormat normalizes a format name. "console" is an alias for text.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText, "console":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown log format %q", name)
	}
}

// New builds a logger and sets the shared level to cfg.Level. String
// attributes pass through the redaction rules in redact.go.
func New(cfg Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}
	var h slog.Handler
	if format == FormatText {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	level.Set(lvl)
	return &slogLogger{l: slog.New(h)}, nil
}

// SetLevel changes the level of every logger built with New. The config
// watcher calls it when log.level changes on disk.
func SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &slogLogger{l: slog.New(slog.DiscardHandler)}
}

var std atomic.Pointer[slogLogger]

func init() {
	l, _ := New(Config{})
	std.Store(l.(*slogLogger))
}

// SetDefault replaces the process-wide logger returned by Default.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		std.Store(sl)
	}
}

// Default returns the process-wide logger. Components built without an
// explicit logger use it.
func Default() Logger {
	return std.Load()
}

// Warn logs through the process-wide logger.
func Warn(msg string, args ...any) {
	std.Load().Warn(msg, args...)
}
