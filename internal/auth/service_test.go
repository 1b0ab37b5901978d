package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/logging"
	"github.com/artsi-ai/artsi/internal/notification"
	"github.com/artsi-ai/artsi/internal/session"
	"github.com/artsi-ai/artsi/internal/wallet"
)

type fakeConnector struct {
	id         string
	accounts   []string
	connectErr error
	signErr    error
	signed     []string
}

func (f *fakeConnector) ID() string   { return f.id }
func (f *fakeConnector) Name() string { return f.id }

func (f *fakeConnector) Connect(context.Context) ([]string, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.accounts, nil
}

func (f *fakeConnector) Disconnect(context.Context) error { return nil }

func (f *fakeConnector) SignMessage(_ context.Context, _ string, text string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = append(f.signed, text)
	return "0xsig", nil
}

type fixture struct {
	svc     *Service
	store   *session.Store
	repo    identity.Repository
	wallets *wallet.Manager
	feed    *notification.Feed
}

func newFixture(t *testing.T, repo identity.Repository, connectors ...wallet.Connector) fixture {
	t.Helper()
	if repo == nil {
		repo = identity.NewMemoryRepository()
	}
	logger := logging.Discard()
	store := session.NewStore(repo)
	wallets := wallet.NewManager(logger, connectors...)
	feed := notification.NewFeed(0)
	clock := func() time.Time { return time.UnixMilli(1700000000000) }
	svc := NewService(store, wallets, feed, logger, WithClock(clock))
	return fixture{svc: svc, store: store, repo: repo, wallets: wallets, feed: feed}
}

func (f fixture) start(t *testing.T) {
	t.Helper()
	if err := f.svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func lastNotice(t *testing.T, feed *notification.Feed) notification.Notice {
	t.Helper()
	entries := feed.Drain()
	if len(entries) == 0 {
		t.Fatalf("expected a notice")
	}
	return entries[len(entries)-1].Notice
}

func TestSignupPersistsEmailIdentity(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Kind != identity.KindEmail || user.DisplayName != "Ava" || user.Email != "ava@x.com" || user.WalletAddress != "" || user.Credits != 100 {
		t.Fatalf("unexpected identity %+v", user)
	}
	if !f.store.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}
	persisted, err := f.repo.Load(ctx)
	if err != nil || persisted != user {
		t.Fatalf("expected persisted identity, got %+v %v", persisted, err)
	}
	if n := lastNotice(t, f.feed); n.Title != "Account Created!" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if f.store.Loading() {
		t.Fatalf("loading flag should be released")
	}
}

func TestEmailLoginDerivesDisplayName(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	user, err := f.svc.Login(context.Background(), Credentials{Type: TypeEmail, Email: "maria@example.com", Password: "anything"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.DisplayName != "maria" || user.Kind != identity.KindEmail {
		t.Fatalf("unexpected identity %+v", user)
	}
	if n := lastNotice(t, f.feed); n.Title != "Welcome back!" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestEmailLoginRequiresEmail(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	_, err := f.svc.Login(context.Background(), Credentials{Type: TypeEmail})
	if !errors.Is(err, errs.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.store.IsAuthenticated() {
		t.Fatalf("expected no session")
	}
}

func TestWalletLogin(t *testing.T) {
	mm := &fakeConnector{id: "metaMask", accounts: []string{"0xABCDEF1234567890"}}
	f := newFixture(t, nil, mm)
	f.start(t)

	user, err := f.svc.Login(context.Background(), Credentials{Type: TypeWallet, WalletType: "metaMask"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Kind != identity.KindWallet || user.WalletAddress != "0xABCDEF1234567890" || user.DisplayName != "User_567890" || user.Credits != 100 || user.Email != "" {
		t.Fatalf("unexpected identity %+v", user)
	}
	if len(mm.signed) != 1 || mm.signed[0] != "Welcome to ArtsiAI! Sign this message to log in. Nonce: 1700000000000" {
		t.Fatalf("unexpected signed messages %q", mm.signed)
	}
	n := lastNotice(t, f.feed)
	if n.Title != "Wallet Connected!" || n.Description != "Connected to 0xABCD...7890" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if !f.store.IsAuthenticated() {
		t.Fatalf("session should survive the post-login reconcile")
	}
}

func TestWalletLoginUnknownConnectorWritesNothing(t *testing.T) {
	f := newFixture(t, nil, &fakeConnector{id: "metaMask", accounts: []string{"0xabc"}})
	f.start(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, Credentials{Type: TypeWallet, WalletType: "nope"})
	if !errors.Is(err, errs.ErrConnectorNotFound) {
		t.Fatalf("expected ConnectorNotFound, got %v", err)
	}
	if _, err := f.repo.Load(ctx); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected nothing persisted, got %v", err)
	}
	n := lastNotice(t, f.feed)
	if n.Title != "Login Failed" || n.Variant != notification.VariantDestructive {
		t.Fatalf("unexpected notice %+v", n)
	}
	if res := ResultOf(err); res.Success || res.Error != "Connector nope not found." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestWalletLoginRejectedWritesNothing(t *testing.T) {
	cases := map[string]*fakeConnector{
		"connect": {id: "metaMask", connectErr: errors.New("User rejected the request.")},
		"sign":    {id: "metaMask", accounts: []string{"0xabc"}, signErr: errors.New("User rejected the request.")},
	}
	for name, connector := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil, connector)
			f.start(t)

			_, err := f.svc.Login(context.Background(), Credentials{Type: TypeWallet, WalletType: "metaMask"})
			if !errors.Is(err, errs.ErrWalletRequestFailed) {
				t.Fatalf("expected WalletRequestFailed, got %v", err)
			}
			if f.store.IsAuthenticated() {
				t.Fatalf("expected no session")
			}
			if res := ResultOf(err); res.Error != "User rejected the request." {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}

func TestGuardedOperationsAreSingleFlight(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)
	ctx := context.Background()

	if !f.store.BeginOperation() {
		t.Fatalf("expected to acquire the guard")
	}
	if _, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"}); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	if _, err := f.svc.Login(ctx, Credentials{Type: TypeEmail, Email: "a@b.c"}); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	f.store.EndOperation()

	if _, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"}); err != nil {
		t.Fatalf("signup after release: %v", err)
	}
}

func TestOperationsBeforeStartAreBusy(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.svc.Signup(context.Background(), SignupInput{Name: "Ava"}); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("expected busy during bootstrap, got %v", err)
	}
}

func TestConnectWalletRequiresEmailSession(t *testing.T) {
	mm := &fakeConnector{id: "metaMask", accounts: []string{"0xABCDEF1234567890"}}
	f := newFixture(t, nil, mm)
	f.start(t)
	ctx := context.Background()

	if _, err := f.svc.ConnectWallet(ctx); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("expected not allowed without session, got %v", err)
	}
	if n := lastNotice(t, f.feed); n.Title != "Action not allowed" {
		t.Fatalf("unexpected notice %+v", n)
	}

	if _, err := f.svc.Login(ctx, Credentials{Type: TypeWallet, WalletType: "metaMask"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	before := f.store.Current()
	if _, err := f.svc.ConnectWallet(ctx); !errors.Is(err, errs.ErrNotAllowed) {
		t.Fatalf("expected not allowed for wallet session, got %v", err)
	}
	if after := f.store.Current(); *after != *before {
		t.Fatalf("wallet session should be untouched")
	}
}

func TestConnectWalletLinksAddress(t *testing.T) {
	mm := &fakeConnector{id: "metaMask", accounts: []string{"0xABCDEF1234567890"}}
	f := newFixture(t, nil, mm)
	f.start(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	linked, err := f.svc.ConnectWallet(ctx)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked.ID != user.ID || linked.Kind != identity.KindEmail || linked.Email != "ava@x.com" || linked.WalletAddress != "0xABCDEF1234567890" {
		t.Fatalf("unexpected linked identity %+v", linked)
	}
	persisted, err := f.repo.Load(ctx)
	if err != nil || persisted != linked {
		t.Fatalf("expected linked identity persisted, got %+v %v", persisted, err)
	}
	n := lastNotice(t, f.feed)
	if n.Title != "Wallet Linked!" || n.Description != "Linked 0xABCD...7890 to your account." {
		t.Fatalf("unexpected notice %+v", n)
	}
	if !f.store.IsAuthenticated() {
		t.Fatalf("linked email session must survive reconcile")
	}
}

func TestConnectWalletFailureLeavesSession(t *testing.T) {
	mm := &fakeConnector{id: "metaMask", connectErr: errors.New("rejected")}
	f := newFixture(t, nil, mm)
	f.start(t)
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := f.svc.ConnectWallet(ctx); !errors.Is(err, errs.ErrWalletRequestFailed) {
		t.Fatalf("expected wallet failure, got %v", err)
	}
	if cur := f.store.Current(); cur == nil || *cur != user {
		t.Fatalf("session changed: %+v", cur)
	}
	if n := lastNotice(t, f.feed); n.Title != "Connection Failed" {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestConnectWalletHonoursLinkConnector(t *testing.T) {
	safe := &fakeConnector{id: "safe", accounts: []string{"0x1111222233334444"}}
	f := newFixture(t, nil, safe)
	f.svc = NewService(f.store, f.wallets, f.feed, logging.Discard(), WithLinkConnector("safe"))
	f.start(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, SignupInput{Name: "Ava", Email: "ava@x.com"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	linked, err := f.svc.ConnectWallet(ctx)
	if err != nil || linked.WalletAddress != "0x1111222233334444" {
		t.Fatalf("unexpected link %+v %v", linked, err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	mm := &fakeConnector{id: "metaMask", accounts: []string{"0xABCDEF1234567890"}}
	f := newFixture(t, nil, mm)
	f.start(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, Credentials{Type: TypeWallet, WalletType: "metaMask"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.wallets.State().Connected {
		t.Fatalf("expected wallet to be disconnected")
	}
	if err := f.svc.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if n := lastNotice(t, f.feed); n.Title != "Logged Out" || n.Description != "See you next time!" {
		t.Fatalf("unexpected notice %+v", n)
	}

	restored, err := session.NewStore(f.repo).Restore(ctx)
	if err != nil || restored != nil {
		t.Fatalf("expected empty restore, got %+v %v", restored, err)
	}
	if d, err := f.svc.Reconcile(ctx, f.wallets.State()); err != nil || d != DecisionNone {
		t.Fatalf("expected no reconcile action, got %v %v", d, err)
	}
}

func TestResultOfSuccess(t *testing.T) {
	if res := ResultOf(nil); !res.Success || res.Error != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res := ResultOf(errors.New("boom")); res.Success || !strings.Contains(res.Error, "Something went wrong") {
		t.Fatalf("foreign errors should not leak: %+v", res)
	}
}
