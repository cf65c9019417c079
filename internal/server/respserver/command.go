package respserver

import (
	"strings"

	"github.com/yndnr/respkv/internal/core/domain"
)

// Command is a decoded request: a name followed by its arguments.
type Command struct {
	Name string
	Args []string
}

// Build turns a decoded array into a Command. The first token is the
// name and the rest are arguments; none of them may be null.
func Build(arr Array) (Command, error) {
	if len(arr.Tokens) == 0 || !arr.Tokens[0].Valid {
		return Command{}, domain.ErrNullCommandName
	}

	args := make([]string, 0, len(arr.Tokens)-1)
	for _, t := range arr.Tokens[1:] {
		if !t.Valid {
			return Command{}, domain.ErrNullArgument
		}
		args = append(args, t.Value)
	}
	return Command{Name: arr.Tokens[0].Value, Args: args}, nil
}

// Upper returns the name used for dispatch.
func (c Command) Upper() string {
	return normalizeCommandName(c.Name)
}

func normalizeCommandName(name string) string {
	// Avoid allocating for names that are already uppercase.
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 'a' && c <= 'z' {
			return strings.ToUpper(name)
		}
	}
	return name
}
