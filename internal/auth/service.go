// Package auth implements the login, signup, wallet linking and logout
// operations over the session store and keeps the session consistent with the
// live wallet connection.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/notification"
	"github.com/artsi-ai/artsi/internal/session"
	"github.com/artsi-ai/artsi/internal/wallet"
)

// Credential types accepted by Login.
const (
	TypeEmail  = "email"
	TypeWallet = "wallet"
)

// DefaultLinkConnector is the connector used to link a wallet to an email account.
const DefaultLinkConnector = "metaMask"

const requestFailedText = "The request was rejected or failed. Please try again."

// Credentials select and parameterize a login variant. Password is accepted
// but never checked.
type Credentials struct {
	Type       string `json:"type"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	WalletType string `json:"walletType"`
}

// SignupInput carries the signup form.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Result is the structured outcome returned to clients.
type Result struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	User    *identity.Identity `json:"user,omitempty"`
}

// ResultOf converts an operation error into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	return Result{Success: false, Error: errs.Message(err)}
}

// Service owns the session operations. Login, Signup and ConnectWallet are
// single-flight through the store's loading flag.
type Service struct {
	store    *session.Store
	wallets  *wallet.Manager
	notifier notification.Notifier
	logger   *slog.Logger

	linkConnector string
	now           func() time.Time

	// mu orders reconciliation against the start of guarded operations and logout.
	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithLinkConnector overrides the connector used by ConnectWallet.
func WithLinkConnector(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.linkConnector = id
		}
	}
}

// WithClock overrides the clock used for login nonces.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the session operations.
func NewService(store *session.Store, wallets *wallet.Manager, notifier notification.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(logger)
	}
	s := &Service{
		store:         store,
		wallets:       wallets,
		notifier:      notifier,
		logger:        logger,
		linkConnector: DefaultLinkConnector,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the current read model.
func (s *Service) Session() session.Snapshot {
	return s.store.Snapshot()
}

// LoginMessage is the text a wallet signs to log in.
func LoginMessage(nonce int64) string {
	return fmt.Sprintf("Welcome to ArtsiAI! Sign this message to log in. Nonce: %d", nonce)
}

// Login signs in with an email address or a wallet connector. On success the
// new identity is persisted before Login returns.
func (s *Service) Login(ctx context.Context, creds Credentials) (identity.Identity, error) {
	if err := s.begin(); err != nil {
		return identity.Identity{}, err
	}
	defer s.end(ctx)

	var (
		id     identity.Identity
		notice notification.Notice
		err    error
	)
	switch creds.Type {
	case TypeEmail:
		id, notice, err = s.emailLogin(creds)
	case TypeWallet:
		id, notice, err = s.walletLogin(ctx, creds.WalletType)
	default:
		err = errs.New(errs.KindValidationFailed, fmt.Sprintf("Unsupported login type %q.", creds.Type))
	}
	if err == nil {
		err = s.write(ctx, id)
	}
	if err != nil {
		s.logger.Warn("login failed", "type", creds.Type, "error", err)
		s.notify(ctx, notification.Failure("Login Failed", requestFailedText))
		return identity.Identity{}, err
	}

	s.logger.Info("login", "kind", id.Kind, "user_id", id.ID)
	s.notify(ctx, notice)
	return id, nil
}

func (s *Service) emailLogin(creds Credentials) (identity.Identity, notification.Notice, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" {
		return identity.Identity{}, notification.Notice{}, errs.New(errs.KindValidationFailed, "Email is required.")
	}
	return identity.NewEmail(email), notification.Info("Welcome back!", "Successfully logged in with email."), nil
}

func (s *Service) walletLogin(ctx context.Context, connectorID string) (identity.Identity, notification.Notice, error) {
	conn, err := s.connect(ctx, connectorID)
	if err != nil {
		return identity.Identity{}, notification.Notice{}, err
	}
	address := conn.Address()
	if _, err := s.wallets.SignMessage(ctx, LoginMessage(s.now().UnixMilli())); err != nil {
		return identity.Identity{}, notification.Notice{}, errs.Wrap(errs.KindWalletRequestFailed, err, err.Error())
	}
	notice := notification.Info("Wallet Connected!", "Connected to "+identity.ShortAddress(address))
	return identity.NewWallet(address), notice, nil
}

// Signup creates an email identity using the supplied name as display name.
func (s *Service) Signup(ctx context.Context, in SignupInput) (identity.Identity, error) {
	if err := s.begin(); err != nil {
		return identity.Identity{}, err
	}
	defer s.end(ctx)

	id := identity.NewSignup(in.Name, in.Email)
	if err := s.write(ctx, id); err != nil {
		s.logger.Error("signup failed", "error", err)
		s.notify(ctx, notification.Failure("Signup Failed", "Please try again."))
		return identity.Identity{}, err
	}
	s.logger.Info("signup", "user_id", id.ID)
	s.notify(ctx, notification.Info("Account Created!", "Welcome to ArtsiAI! You've received 100 free credits."))
	return id, nil
}

// ConnectWallet links a wallet to the current email identity. The identity
// keeps its email kind and gains a wallet address.
func (s *Service) ConnectWallet(ctx context.Context) (identity.Identity, error) {
	if err := s.requireEmailSession(ctx); err != nil {
		return identity.Identity{}, err
	}
	if err := s.begin(); err != nil {
		return identity.Identity{}, err
	}
	defer s.end(ctx)

	conn, err := s.connect(ctx, s.linkConnector)
	if err != nil {
		s.logger.Warn("link wallet failed", "connector", s.linkConnector, "error", err)
		s.notify(ctx, notification.Failure("Connection Failed", requestFailedText))
		return identity.Identity{}, err
	}

	// The session may have been logged out while the wallet prompt was open.
	if err := s.requireEmailSession(ctx); err != nil {
		return identity.Identity{}, err
	}
	linked := *s.store.Current()
	linked.WalletAddress = conn.Address()
	if err := s.write(ctx, linked); err != nil {
		s.notify(ctx, notification.Failure("Connection Failed", requestFailedText))
		return identity.Identity{}, err
	}
	s.logger.Info("wallet linked", "user_id", linked.ID, "connector", conn.ConnectorID)
	s.notify(ctx, notification.Info("Wallet Linked!", "Linked "+identity.ShortAddress(linked.WalletAddress)+" to your account."))
	return linked, nil
}

func (s *Service) requireEmailSession(ctx context.Context) error {
	current := s.store.Current()
	if current != nil && current.Kind == identity.KindEmail {
		return nil
	}
	s.notify(ctx, notification.Info("Action not allowed", "This is for linking a wallet to an email account."))
	return errs.New(errs.KindNotAllowed, "Linking a wallet requires an email account.")
}

// Logout disconnects a connected wallet and clears the session. Calling it
// without a session is harmless.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked(ctx, s.wallets.State())
}

func (s *Service) logoutLocked(ctx context.Context, state wallet.State) error {
	if state.Connected {
		if err := s.wallets.Disconnect(ctx); err != nil {
			s.logger.Warn("disconnect wallet", "error", err)
		}
	}
	if err := s.store.Clear(ctx); err != nil {
		return errs.Wrap(errs.KindInternal, err, "")
	}
	s.notify(ctx, notification.Info("Logged Out", "See you next time!"))
	return nil
}

func (s *Service) connect(ctx context.Context, connectorID string) (wallet.Connection, error) {
	connector, ok := s.wallets.Lookup(connectorID)
	if !ok {
		return wallet.Connection{}, errs.New(errs.KindConnectorNotFound, fmt.Sprintf("Connector %s not found.", connectorID))
	}
	conn, err := s.wallets.Connect(ctx, connector)
	if err != nil {
		return wallet.Connection{}, errs.Wrap(errs.KindWalletRequestFailed, err, err.Error())
	}
	return conn, nil
}

func (s *Service) write(ctx context.Context, id identity.Identity) error {
	if err := s.store.Write(ctx, id); err != nil {
		return errs.Wrap(errs.KindInternal, err, "")
	}
	return nil
}

func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.BeginOperation() {
		return errs.New(errs.KindBusy, "")
	}
	return nil
}

// end releases the loading flag and reconciles against the wallet state as
// it is now, covering any change skipped while the operation ran.
func (s *Service) end(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.EndOperation()
	if _, err := s.reconcileLocked(context.WithoutCancel(ctx), s.wallets.State()); err != nil {
		s.logger.Warn("reconcile session", "error", err)
	}
}

func (s *Service) notify(ctx context.Context, notice notification.Notice) {
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Warn("notify", "title", notice.Title, "error", err)
	}
}
