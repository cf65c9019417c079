package respserver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/core/domain"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a request array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// maxHeaderDigits bounds a length prefix; "-1" and "524288" both fit.
	maxHeaderDigits = 20
)

// Token is one decoded bulk string. Valid is false for the null bulk string.
type Token struct {
	Value string
	Valid bool
}

// Bulk returns a non-null token.
func Bulk(s string) Token {
	return Token{Value: s, Valid: true}
}

// NullToken returns the null bulk string.
func NullToken() Token {
	return Token{}
}

// Array is the result of decoding one request.
type Array struct {
	Tokens []Token
	// Null is set for "*-1", which is distinct from an empty array.
	Null bool
	// Declared is the element count from the header. Decoding does not
	// enforce it.
	Declared int
}

// Decode parses a single request array from buf.
//
// Elements are read until buf is exhausted, so a declared count that
// disagrees with the number of elements present is tolerated. Decode does
// not retain buf.
func Decode(buf []byte) (Array, error) {
	if len(buf) == 0 {
		return Array{}, domain.ErrEmptyInput
	}
	if buf[0] != '*' {
		return Array{}, domain.ErrBadLength.WithDetails("expected '*'")
	}

	n, pos, err := readLength(buf, 1)
	if err != nil {
		return Array{}, err
	}
	switch {
	case n == -1:
		return Array{Null: true, Declared: -1}, nil
	case n < -1:
		return Array{}, domain.ErrBadLength.WithDetails("invalid array length")
	case n == 0:
		return Array{Tokens: []Token{}}, nil
	case n > MaxArrayLen:
		return Array{}, domain.ErrLimitExceeded.WithDetails(
			fmt.Sprintf("array length %d exceeds limit %d", n, MaxArrayLen))
	}
	if pos == len(buf) {
		return Array{}, domain.ErrTruncated.WithDetails("no elements")
	}

	arr := Array{Tokens: make([]Token, 0, n), Declared: n}
	for pos < len(buf) {
		if len(arr.Tokens) == MaxArrayLen {
			return Array{}, domain.ErrLimitExceeded.WithDetails(
				fmt.Sprintf("more than %d elements", MaxArrayLen))
		}
		var tok Token
		tok, pos, err = readBulk(buf, pos)
		if err != nil {
			return Array{}, err
		}
		arr.Tokens = append(arr.Tokens, tok)
	}
	return arr, nil
}

// readBulk decodes "$<len>\r\n<bytes>\r\n" starting at pos.
func readBulk(buf []byte, pos int) (Token, int, error) {
	if buf[pos] != '$' {
		return Token{}, 0, domain.ErrBadLength.WithDetails("expected '$'")
	}
	n, pos, err := readLength(buf, pos+1)
	if err != nil {
		return Token{}, 0, err
	}
	if n == -1 {
		return NullToken(), pos, nil
	}
	if n < -1 {
		return Token{}, 0, domain.ErrBadLength.WithDetails("invalid bulk length")
	}
	if n > MaxBulkLen {
		return Token{}, 0, domain.ErrLimitExceeded.WithDetails(
			fmt.Sprintf("bulk length %d exceeds limit %d", n, MaxBulkLen))
	}

	end := pos + n
	if end+2 > len(buf) {
		return Token{}, 0, domain.ErrTruncated.WithDetails(
			fmt.Sprintf("bulk of %d bytes runs past end of input", n))
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Token{}, 0, domain.ErrBadLength.WithDetails("bulk length does not match content")
	}
	return Bulk(string(buf[pos:end])), end + 2, nil
}

// readLength parses a signed decimal terminated by CRLF, starting at pos.
// It returns the value and the offset just past the LF.
func readLength(buf []byte, pos int) (int, int, error) {
	cr := -1
	for i := pos; i < len(buf); i++ {
		if buf[i] == '\r' {
			cr = i
			break
		}
	}
	if cr < 0 {
		return 0, 0, domain.ErrTruncated.WithDetails("missing CRLF")
	}
	if cr+1 >= len(buf) || buf[cr+1] != '\n' {
		return 0, 0, domain.ErrBadLength.WithDetails("CR not followed by LF")
	}

	digits := buf[pos:cr]
	if len(digits) == 0 || len(digits) > maxHeaderDigits || !isSignedDecimal(digits) {
		return 0, 0, domain.ErrBadLength.WithDetails(fmt.Sprintf("invalid length %q", digits))
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, 0, domain.ErrBadLength.WithCause(err)
	}
	return n, cr + 2, nil
}

func isSignedDecimal(b []byte) bool {
	if b[0] == '-' {
		b = b[1:]
	}
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// EncodeArray renders tokens as a request array. It is the inverse of Decode.
func EncodeArray(tokens []Token) []byte {
	var sb strings.Builder
	sb.WriteString("*" + strconv.Itoa(len(tokens)) + "\r\n")
	for _, t := range tokens {
		if !t.Valid {
			sb.WriteString("$-1\r\n")
			continue
		}
		sb.WriteString("$" + strconv.Itoa(len(t.Value)) + "\r\n")
		sb.WriteString(t.Value)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

// EncodeCommand renders a command name and its arguments as a request array.
func EncodeCommand(name string, args ...string) []byte {
	tokens := make([]Token, 0, len(args)+1)
	tokens = append(tokens, Bulk(name))
	for _, a := range args {
		tokens = append(tokens, Bulk(a))
	}
	return EncodeArray(tokens)
}

// ReplyKind identifies the wire form of a reply.
type ReplyKind int

const (
	// KindSimple is "+text\r\n".
	KindSimple ReplyKind = iota
	// KindError is "-text\r\n".
	KindError
	// KindNull is "$-1\r\n".
	KindNull
)

func (k ReplyKind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindError:
		return "error"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Reply is the single response written for a request.
type Reply struct {
	Kind ReplyKind
	Text string
}

// Simple returns a simple string reply.
func Simple(s string) Reply {
	return Reply{Kind: KindSimple, Text: s}
}

// Error returns an error reply. text should include the "ERR" prefix.
func Error(text string) Reply {
	return Reply{Kind: KindError, Text: text}
}

// Null returns the null reply.
func Null() Reply {
	return Reply{Kind: KindNull}
}

// Encode renders the reply in wire form. CR and LF inside simple and
// error text are replaced with spaces so that the line stays a single frame.
func (r Reply) Encode() []byte {
	switch r.Kind {
	case KindError:
		return []byte("-" + oneLine(r.Text) + "\r\n")
	case KindNull:
		return []byte("$-1\r\n")
	default:
		return []byte("+" + oneLine(r.Text) + "\r\n")
	}
}

// WriteTo writes the encoded reply to w.
func (r Reply) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Encode())
	return int64(n), err
}

func (r Reply) String() string {
	switch r.Kind {
	case KindNull:
		return "(nil)"
	case KindError:
		return "(error) " + r.Text
	default:
		return r.Text
	}
}

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

func oneLine(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return lineBreaks.Replace(s)
	}
	return s
}

// ReadReply reads one reply from r. Besides the three kinds the server
// produces, it accepts non-null bulk strings and reports them as simple
// replies, so the client can also talk to stock Redis servers.
func ReadReply(r *bufio.Reader) (Reply, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return Reply{}, err
	}
	if len(line) < 3 || !strings.HasSuffix(line, "\r\n") {
		return Reply{}, fmt.Errorf("malformed reply line %q", line)
	}
	body := line[1 : len(line)-2]

	switch line[0] {
	case '+':
		return Simple(body), nil
	case '-':
		return Error(body), nil
	case ':':
		return Simple(body), nil
	case '$':
		n, err := strconv.Atoi(body)
		if err != nil {
			return Reply{}, fmt.Errorf("invalid bulk length %q: %w", body, err)
		}
		if n < 0 {
			return Null(), nil
		}
		if n > MaxBulkLen {
			return Reply{}, fmt.Errorf("bulk length %d exceeds limit %d", n, MaxBulkLen)
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Reply{}, err
		}
		return Simple(string(buf[:n])), nil
	default:
		return Reply{}, fmt.Errorf("unsupported reply type %q", line[0])
	}
}
