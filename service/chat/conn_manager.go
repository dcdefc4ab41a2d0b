package chat

import (
	"sync"
)

// ConnManager is the registry of live connections. It is owned by the
// process and injected where needed — never package-level state. Add and
// remove are single-step operations under the lock; iteration works on a
// snapshot, so a connection added mid-broadcast may or may not see that
// event but can never fault the loop.
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Client // connID -> client
}

func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*Client)}
}

func (m *ConnManager) Register(c *Client) {
	if c == nil || c.ConnID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ConnID] = c
}

// Unregister removes and closes the connection. Removing an id that is
// already gone is a no-op.
func (m *ConnManager) Unregister(connID string) {
	m.mu.Lock()
	c, ok := m.conns[connID]
	if ok {
		delete(m.conns, connID)
	}
	m.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Snapshot returns the current set of clients for iteration outside the
// lock.
func (m *ConnManager) Snapshot() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.conns))
	for _, c := range m.conns {
		out = append(out, c)
	}
	return out
}

func (m *ConnManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Close shuts every connection down; used on process exit.
func (m *ConnManager) Close() {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]*Client)
	m.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
