package connection

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/respkv/internal/server/respserver"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// Client is a single connection to a server. It is not safe for concurrent
// use.
type Client struct {
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to addr. A zero timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Do sends args as one request array and returns the reply. A server error
// reply is returned as a Reply, not as an error.
func (c *Client) Do(args ...string) (respserver.Reply, error) {
	tokens := make([]respserver.Token, len(args))
	for i, a := range args {
		tokens[i] = respserver.Bulk(a)
	}
	return c.DoTokens(tokens)
}

// DoTokens sends tokens as one request array. Null tokens are allowed.
func (c *Client) DoTokens(tokens []respserver.Token) (respserver.Reply, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return respserver.Reply{}, err
	}
	if _, err := c.conn.Write(respserver.EncodeArray(tokens)); err != nil {
		return respserver.Reply{}, fmt.Errorf("write request: %w", err)
	}
	reply, err := respserver.ReadReply(c.reader)
	if err != nil {
		return respserver.Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
