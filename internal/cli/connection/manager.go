package connection

import (
	"context"
	"time"

	"github.com/yndnr/respkv/internal/server/respserver"
)

// Manager holds the current connection for a CLI session.
type Manager struct {
	addr    string
	timeout time.Duration
	current *Client
}

// NewManager creates a manager for addr. Nothing is dialed until Do.
func NewManager(addr string, timeout time.Duration) *Manager {
	return &Manager{addr: addr, timeout: timeout}
}

// Do runs one request, dialing first if needed. The connection is dropped
// after a transport error.
func (m *Manager) Do(ctx context.Context, args ...string) (respserver.Reply, error) {
	if m.current == nil {
		c, err := Dial(ctx, m.addr, m.timeout)
		if err != nil {
			return respserver.Reply{}, err
		}
		m.current = c
	}

	reply, err := m.current.Do(args...)
	if err != nil {
		m.Disconnect()
		return respserver.Reply{}, err
	}
	return reply, nil
}

// Connect switches to addr, closing any current connection.
func (m *Manager) Connect(addr string) {
	m.Disconnect()
	m.addr = addr
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.current != nil {
		_ = m.current.Close()
		m.current = nil
	}
}

// Addr returns the target server address.
func (m *Manager) Addr() string {
	return m.addr
}

// IsConnected returns true if a connection is open.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
