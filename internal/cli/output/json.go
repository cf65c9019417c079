package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/respkv/internal/server/respserver"
)

// JSONReply is the JSON shape of a reply. Value is null for null replies.
type JSONReply struct {
	Type  string  `json:"type"`
	Value *string `json:"value"`
}

// JSONFormatter formats replies as single-line JSON objects.
type JSONFormatter struct{}

// Format writes the reply as one JSON line.
func (f *JSONFormatter) Format(w io.Writer, reply respserver.Reply) error {
	out := JSONReply{Type: reply.Kind.String()}
	if reply.Kind != respserver.KindNull {
		text := reply.Text
		out.Value = &text
	}
	return json.NewEncoder(w).Encode(out)
}
