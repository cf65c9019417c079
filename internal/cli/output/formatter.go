package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/respkv/internal/server/respserver"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter writes a reply to w.
type Formatter interface {
	Format(w io.Writer, reply respserver.Reply) error
}

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter prints replies the way redis-cli does.
type TextFormatter struct{}

// Format writes the reply followed by a newline.
func (f *TextFormatter) Format(w io.Writer, reply respserver.Reply) error {
	_, err := fmt.Fprintln(w, reply.String())
	return err
}
