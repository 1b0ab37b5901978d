package auth

import (
	"context"
	"strings"

	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/wallet"
)

// Decision is the outcome of reconciling a persisted identity with the live
// wallet state.
type Decision int

const (
	// DecisionNone means there was nothing to reconcile.
	DecisionNone Decision = iota
	// DecisionKeep leaves the session in place.
	DecisionKeep
	// DecisionClear logs the session out.
	DecisionClear
)

func (d Decision) String() string {
	switch d {
	case DecisionKeep:
		return "keep"
	case DecisionClear:
		return "clear"
	default:
		return "none"
	}
}

// Decide applies the reconciliation table. A connected wallet must match the
// persisted wallet address for any identity kind, so an email identity with no
// linked wallet, or a linked one on another account, is cleared.
func Decide(persisted *identity.Identity, state wallet.State) Decision {
	if persisted == nil {
		return DecisionNone
	}
	if state.Connected {
		if persisted.WalletAddress != "" && sameAddress(persisted.WalletAddress, state.Address) {
			return DecisionKeep
		}
		return DecisionClear
	}
	if persisted.Kind == identity.KindWallet {
		return DecisionClear
	}
	return DecisionKeep
}

// Addresses are compared case-insensitively since checksummed and lower-case
// renderings name the same account.
func sameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Start restores the persisted session, reconciles it against the current
// wallet state and ends the bootstrap loading phase. The loading phase ends
// even when restore fails so the service stays usable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.store.EndOperation()

	if _, err := s.store.Restore(ctx); err != nil {
		s.logger.Error("restore session", "error", err)
		return err
	}
	_, err := s.reconcileLocked(ctx, s.wallets.State())
	return err
}

// Watch reconciles on every wallet state change until ctx is done or the
// channel closes. Changes that arrive while an operation holds the loading
// flag are skipped; the operation reconciles when it finishes.
func (s *Service) Watch(ctx context.Context, states <-chan wallet.State) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if _, err := s.Reconcile(ctx, state); err != nil {
				s.logger.Warn("reconcile session", "error", err)
			}
		}
	}
}

// Reconcile applies Decide to the current session and state. It does nothing
// while an operation is in flight.
func (s *Service) Reconcile(ctx context.Context, state wallet.State) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Loading() {
		return DecisionNone, nil
	}
	return s.reconcileLocked(ctx, state)
}

func (s *Service) reconcileLocked(ctx context.Context, state wallet.State) (Decision, error) {
	decision := Decide(s.store.Current(), state)
	if decision != DecisionClear {
		return decision, nil
	}
	s.logger.Info("session does not match wallet, logging out",
		"connected", state.Connected, "address", state.Address)
	return decision, s.logoutLocked(ctx, state)
}
