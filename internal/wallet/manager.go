package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the set of available connectors, the active connection and
// the live state. Subscribers receive the latest state; a slow subscriber
// only ever misses intermediate values, never the most recent one.
type Manager struct {
	logger *slog.Logger

	connectors []Connector
	byID       map[string]Connector

	mu     sync.Mutex
	active Connector
	state  State
	subs   map[int]chan State
	nextID int
}

// NewManager builds a manager over connectors. Later connectors with a
// duplicate ID are ignored.
func NewManager(logger *slog.Logger, connectors ...Connector) *Manager {
	m := &Manager{
		logger: logger,
		byID:   make(map[string]Connector, len(connectors)),
		subs:   make(map[int]chan State),
	}
	for _, c := range connectors {
		if c == nil {
			continue
		}
		if _, dup := m.byID[c.ID()]; dup {
			continue
		}
		m.byID[c.ID()] = c
		m.connectors = append(m.connectors, c)
	}
	return m
}

// Connectors lists the available connectors in registration order.
func (m *Manager) Connectors() []Info {
	out := make([]Info, 0, len(m.connectors))
	for _, c := range m.connectors {
		out = append(out, Info{ID: c.ID(), Name: c.Name()})
	}
	return out
}

// Lookup resolves a connector by identifier.
func (m *Manager) Lookup(id string) (Connector, bool) {
	c, ok := m.byID[id]
	return c, ok
}

// Connect authorizes c and makes it the active connection.
func (m *Manager) Connect(ctx context.Context, c Connector) (Connection, error) {
	accounts, err := c.Connect(ctx)
	if err != nil {
		return Connection{}, err
	}
	if len(accounts) == 0 {
		return Connection{}, ErrNoAccounts
	}

	m.mu.Lock()
	previous := m.active
	m.active = c
	m.setStateLocked(State{Connected: true, Address: accounts[0], ConnectorID: c.ID()})
	m.mu.Unlock()

	if previous != nil && previous != c {
		if err := previous.Disconnect(ctx); err != nil && m.logger != nil {
			m.logger.Warn("disconnect previous connector", "connector", previous.ID(), "error", err)
		}
	}

	return Connection{ConnectorID: c.ID(), Accounts: accounts}, nil
}

// Disconnect drops the active connection. It is a no-op when nothing is
// connected. The live state is cleared even if the connector reports an error.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.setStateLocked(State{})
	m.mu.Unlock()

	if active == nil {
		return nil
	}
	if err := active.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect %s: %w", active.ID(), err)
	}
	return nil
}

// SignMessage asks the active connector to sign text with the connected account.
func (m *Manager) SignMessage(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	active := m.active
	address := m.state.Address
	m.mu.Unlock()

	if active == nil {
		return "", ErrNotConnected
	}
	return active.SignMessage(ctx, address, text)
}

// State returns the live connection status.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Observe records a state change reported by the wallet itself, for example
// an account switch in a browser extension.
func (m *Manager) Observe(s State) {
	if !s.Connected {
		s = State{}
	}
	m.mu.Lock()
	if !s.Connected {
		m.active = nil
	} else if s.ConnectorID == "" && m.active != nil {
		s.ConnectorID = m.active.ID()
	}
	m.setStateLocked(s)
	m.mu.Unlock()
}

// Subscribe returns a channel of state changes and a cancel func.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Manager) setStateLocked(s State) {
	if s == m.state {
		return
	}
	m.state = s
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
