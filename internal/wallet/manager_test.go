package wallet

import (
	"context"
	"errors"
	"testing"
)

type stubConnector struct {
	id           string
	accounts     []string
	connectErr   error
	disconnected int
}

func (s *stubConnector) ID() string   { return s.id }
func (s *stubConnector) Name() string { return s.id }

func (s *stubConnector) Connect(context.Context) ([]string, error) {
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return s.accounts, nil
}

func (s *stubConnector) Disconnect(context.Context) error {
	s.disconnected++
	return nil
}

func (s *stubConnector) SignMessage(_ context.Context, account, text string) (string, error) {
	return account + ":" + text, nil
}

func TestNewManagerIgnoresDuplicateIDs(t *testing.T) {
	first := &stubConnector{id: "metaMask"}
	m := NewManager(nil, first, &stubConnector{id: "metaMask"}, &stubConnector{id: "safe"}, nil)

	infos := m.Connectors()
	if len(infos) != 2 || infos[0].ID != "metaMask" || infos[1].ID != "safe" {
		t.Fatalf("unexpected connectors %+v", infos)
	}
	got, ok := m.Lookup("metaMask")
	if !ok || got != first {
		t.Fatalf("expected first registration to win")
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Fatalf("expected unknown connector lookup to fail")
	}
}

func TestConnectUpdatesStateAndNotifies(t *testing.T) {
	c := &stubConnector{id: "metaMask", accounts: []string{"0xABCDEF1234567890"}}
	m := NewManager(nil, c)
	updates, cancel := m.Subscribe()
	defer cancel()

	conn, err := m.Connect(context.Background(), c)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if conn.Address() != "0xABCDEF1234567890" {
		t.Fatalf("unexpected address %q", conn.Address())
	}

	want := State{Connected: true, Address: "0xABCDEF1234567890", ConnectorID: "metaMask"}
	if m.State() != want {
		t.Fatalf("unexpected state %+v", m.State())
	}
	select {
	case got := <-updates:
		if got != want {
			t.Fatalf("unexpected update %+v", got)
		}
	default:
		t.Fatalf("expected a state update")
	}
}

func TestConnectFailureLeavesStateUntouched(t *testing.T) {
	c := &stubConnector{id: "metaMask", connectErr: errors.New("user rejected")}
	m := NewManager(nil, c)

	if _, err := m.Connect(context.Background(), c); err == nil {
		t.Fatalf("expected error")
	}
	if m.State().Connected {
		t.Fatalf("expected disconnected state")
	}

	empty := &stubConnector{id: "safe"}
	if _, err := m.Connect(context.Background(), empty); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("expected ErrNoAccounts, got %v", err)
	}
}

func TestConnectSwitchDisconnectsPrevious(t *testing.T) {
	a := &stubConnector{id: "metaMask", accounts: []string{"0xaaa"}}
	b := &stubConnector{id: "safe", accounts: []string{"0xbbb"}}
	m := NewManager(nil, a, b)

	if _, err := m.Connect(context.Background(), a); err != nil {
		t.Fatalf("connect a: %v", err)
	}
	if _, err := m.Connect(context.Background(), b); err != nil {
		t.Fatalf("connect b: %v", err)
	}
	if a.disconnected != 1 {
		t.Fatalf("expected previous connector to be disconnected once, got %d", a.disconnected)
	}
	if m.State().ConnectorID != "safe" {
		t.Fatalf("unexpected state %+v", m.State())
	}
}

func TestDisconnectClearsState(t *testing.T) {
	c := &stubConnector{id: "metaMask", accounts: []string{"0xaaa"}}
	m := NewManager(nil, c)

	if err := m.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect with nothing active: %v", err)
	}
	if _, err := m.Connect(context.Background(), c); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := m.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if m.State() != (State{}) || c.disconnected != 1 {
		t.Fatalf("unexpected state %+v after disconnect", m.State())
	}
	if _, err := m.SignMessage(context.Background(), "hi"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSignMessageUsesConnectedAccount(t *testing.T) {
	c := &stubConnector{id: "metaMask", accounts: []string{"0xaaa"}}
	m := NewManager(nil, c)
	if _, err := m.Connect(context.Background(), c); err != nil {
		t.Fatalf("connect: %v", err)
	}

	sig, err := m.SignMessage(context.Background(), "hello")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if sig != "0xaaa:hello" {
		t.Fatalf("unexpected signature %q", sig)
	}
}

func TestObserveKeepsOnlyLatest(t *testing.T) {
	c := &stubConnector{id: "metaMask", accounts: []string{"0xaaa"}}
	m := NewManager(nil, c)
	updates, cancel := m.Subscribe()

	if _, err := m.Connect(context.Background(), c); err != nil {
		t.Fatalf("connect: %v", err)
	}
	m.Observe(State{Connected: true, Address: "0xbbb"})
	m.Observe(State{Connected: true, Address: "0xbbb"})

	got := <-updates
	if got.Address != "0xbbb" || got.ConnectorID != "metaMask" {
		t.Fatalf("expected latest state with inherited connector, got %+v", got)
	}
	select {
	case extra := <-updates:
		t.Fatalf("unexpected extra update %+v", extra)
	default:
	}

	m.Observe(State{Connected: false, Address: "0xbbb"})
	if got := <-updates; got != (State{}) {
		t.Fatalf("expected zero state, got %+v", got)
	}

	cancel()
	cancel()
	if _, open := <-updates; open {
		t.Fatalf("expected channel to be closed after cancel")
	}
}
