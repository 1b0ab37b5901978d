package identity

import (
	"encoding/json"
	"fmt"
)

// Kind tags the provenance of an identity.
type Kind string

const (
	KindEmail  Kind = "email"
	KindWallet Kind = "wallet"
)

// StartingCredits is the balance every new identity receives.
const StartingCredits = 100

// Identity is the signed-in user record persisted under the profile key.
// Exactly one of Email and WalletAddress is set, matching Kind, except for an
// email identity that linked a wallet, which carries both.
type Identity struct {
	ID            string
	Kind          Kind
	Email         string
	WalletAddress string
	DisplayName   string
	Credits       int
}

// HasWallet reports whether a wallet address is attached.
func (i Identity) HasWallet() bool {
	return i.WalletAddress != ""
}

type wireIdentity struct {
	ID            string  `json:"id"`
	Email         *string `json:"email"`
	WalletAddress *string `json:"walletAddress"`
	DisplayName   string  `json:"displayName"`
	Kind          Kind    `json:"kind"`
	Credits       int     `json:"credits"`
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// MarshalJSON writes absent email/address fields as null.
func (i Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireIdentity{
		ID:            i.ID,
		Email:         optional(i.Email),
		WalletAddress: optional(i.WalletAddress),
		DisplayName:   i.DisplayName,
		Kind:          i.Kind,
		Credits:       i.Credits,
	})
}

// UnmarshalJSON accepts the persisted record format.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var w wireIdentity
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindEmail, KindWallet:
	default:
		return fmt.Errorf("unknown identity kind %q", w.Kind)
	}
	*i = Identity{
		ID:            w.ID,
		Kind:          w.Kind,
		Email:         deref(w.Email),
		WalletAddress: deref(w.WalletAddress),
		DisplayName:   w.DisplayName,
		Credits:       w.Credits,
	}
	return nil
}
