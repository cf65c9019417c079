package repl

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnbalancedQuotes is returned by Split for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// Split breaks line into tokens. Double-quoted tokens accept \n, \r, \t,
// \", \\ and \xHH escapes. Single-quoted tokens are taken literally.
// A quoted empty string yields an empty token.
func Split(line string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		inTok  bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			if inTok {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inTok = false
			}
		case ch == '"':
			end, err := readDouble(line, i+1, &cur)
			if err != nil {
				return nil, err
			}
			i = end
			inTok = true
		case ch == '\'':
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, ErrUnbalancedQuotes
			}
			cur.WriteString(line[i+1 : i+1+end])
			i += end + 1
			inTok = true
		default:
			cur.WriteByte(ch)
			inTok = true
		}
	}
	if inTok {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// readDouble consumes a double-quoted body starting at pos and returns the
// index of the closing quote.
func readDouble(line string, pos int, cur *strings.Builder) (int, error) {
	for i := pos; i < len(line); i++ {
		ch := line[i]
		if ch == '"' {
			return i, nil
		}
		if ch != '\\' || i+1 >= len(line) {
			cur.WriteByte(ch)
			continue
		}

		i++
		switch esc := line[i]; esc {
		case 'n':
			cur.WriteByte('\n')
		case 'r':
			cur.WriteByte('\r')
		case 't':
			cur.WriteByte('\t')
		case 'x':
			if i+2 < len(line) {
				if b, err := strconv.ParseUint(line[i+1:i+3], 16, 8); err == nil {
					cur.WriteByte(byte(b))
					i += 2
					continue
				}
			}
			cur.WriteByte(esc)
		default:
			cur.WriteByte(esc)
		}
	}
	return 0, ErrUnbalancedQuotes
}
