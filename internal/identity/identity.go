package identity

import (
	"strings"

	"github.com/google/uuid"
)

// NewEmail builds a fresh email identity whose display name is the local part
// of the address.
func NewEmail(email string) Identity {
	return Identity{
		ID:          uuid.New().String(),
		Kind:        KindEmail,
		Email:       email,
		DisplayName: EmailLocalPart(email),
		Credits:     StartingCredits,
	}
}

// NewSignup builds a fresh email identity that uses the supplied name verbatim.
func NewSignup(name, email string) Identity {
	id := NewEmail(email)
	id.DisplayName = name
	return id
}

// NewWallet builds a fresh wallet identity for address.
func NewWallet(address string) Identity {
	return Identity{
		ID:            uuid.New().String(),
		Kind:          KindWallet,
		WalletAddress: address,
		DisplayName:   "User_" + tail(address, 6),
		Credits:       StartingCredits,
	}
}

// EmailLocalPart returns the text before the first '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// ShortAddress renders 0xABCD...7890 for notices.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + tail(address, 4)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
