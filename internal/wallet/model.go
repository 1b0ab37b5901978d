package wallet

import (
	"context"
	"errors"
)

var (
	// ErrNotConnected is returned when an operation needs an active connection.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrNoAccounts is returned when a connector authorizes no account.
	ErrNoAccounts = errors.New("wallet returned no accounts")
)

// Connector is a named integration with one wallet provider.
type Connector interface {
	ID() string
	Name() string
	// Connect asks the wallet for authorization and returns the exposed accounts.
	Connect(ctx context.Context) ([]string, error)
	Disconnect(ctx context.Context) error
	// SignMessage signs text with account and returns the hex signature.
	SignMessage(ctx context.Context, account, text string) (string, error)
}

// Info describes a connector for listings.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// State is the live connection status.
type State struct {
	Connected   bool   `json:"isConnected"`
	Address     string `json:"address,omitempty"`
	ConnectorID string `json:"connectorId,omitempty"`
}

// Connection is the result of a successful connect.
type Connection struct {
	ConnectorID string
	Accounts    []string
}

// Address returns the first authorized account.
func (c Connection) Address() string {
	if len(c.Accounts) == 0 {
		return ""
	}
	return c.Accounts[0]
}
