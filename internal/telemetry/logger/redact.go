package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Key patterns whose values are never written to the log.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// Keys that carry client payloads. Long values are truncated.
var payloadKeys = map[string]bool{
	"value": true,
	"arg":   true,
	"args":  true,
	"raw":   true,
}

const (
	redactedValue = "***REDACTED***"

	// MaxPayloadLen is the longest payload attribute logged verbatim.
	MaxPayloadLen = 64
)

// redactSensitive rewrites an attribute before it reaches the handler.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if payloadKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, Truncate(v))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// Truncate shortens v to MaxPayloadLen bytes, noting how much was cut.
func Truncate(v string) string {
	if len(v) <= MaxPayloadLen {
		return v
	}
	return fmt.Sprintf("%s...(%d more bytes)", v[:MaxPayloadLen], len(v)-MaxPayloadLen)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
