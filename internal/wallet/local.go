package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/sha3"
)

// ErrAccountMismatch is returned when signing is requested for an account the
// connector does not hold.
var ErrAccountMismatch = errors.New("account not managed by this connector")

// LocalConnector holds a signing key in process. It stands in for a
// browser-injected wallet on headless deployments: accounts are derived from
// the key the way Ethereum derives them (last 20 bytes of the keccak-256 of
// the public key) and messages are hashed with the personal-message prefix.
type LocalConnector struct {
	id      string
	name    string
	key     ed25519.PrivateKey
	address string

	mu        sync.Mutex
	connected bool
}

// NewLocalConnector derives a deterministic key for id from secret.
func NewLocalConnector(id, name, secret string) *LocalConnector {
	seed := keccak256([]byte(secret + ":" + id))
	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)
	return &LocalConnector{
		id:      id,
		name:    name,
		key:     key,
		address: checksumAddress(keccak256(pub)[12:]),
	}
}

func (c *LocalConnector) ID() string   { return c.id }
func (c *LocalConnector) Name() string { return c.name }

// Address returns the account this connector exposes.
func (c *LocalConnector) Address() string { return c.address }

// Connect authorizes the single local account.
func (c *LocalConnector) Connect(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return []string{c.address}, nil
}

// Disconnect revokes the authorization.
func (c *LocalConnector) Disconnect(context.Context) error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	return nil
}

// SignMessage signs the personal-message digest of text.
func (c *LocalConnector) SignMessage(ctx context.Context, account, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return "", ErrNotConnected
	}
	if !strings.EqualFold(account, c.address) {
		return "", fmt.Errorf("%w: %s", ErrAccountMismatch, account)
	}
	sig := ed25519.Sign(c.key, MessageDigest(text))
	return "0x" + hex.EncodeToString(sig), nil
}

// Verify checks a signature produced by SignMessage.
func (c *LocalConnector) Verify(text, signature string) bool {
	raw, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return false
	}
	return ed25519.Verify(c.key.Public().(ed25519.PublicKey), MessageDigest(text), raw)
}

// MessageDigest hashes text with the Ethereum personal-message prefix.
func MessageDigest(text string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(text))
	return keccak256([]byte(prefix + text))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// checksumAddress renders a 20-byte account as a mixed-case hex address.
func checksumAddress(raw []byte) string {
	lower := hex.EncodeToString(raw)
	hash := hex.EncodeToString(keccak256([]byte(lower)))
	out := make([]byte, len(lower))
	for i := range lower {
		ch := lower[i]
		if ch >= 'a' && ch <= 'f' && hash[i] >= '8' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return "0x" + string(out)
}

// LocalConnectors builds one connector per id, named after the wallet
// providers the front end knows about.
func LocalConnectors(secret string, ids ...string) []Connector {
	out := make([]Connector, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, NewLocalConnector(id, displayName(id), secret))
	}
	return out
}

var knownNames = map[string]string{
	"injected":      "Browser Wallet",
	"metaMask":      "MetaMask",
	"walletConnect": "WalletConnect",
	"safe":          "Safe",
}

func displayName(id string) string {
	if name, ok := knownNames[id]; ok {
		return name
	}
	return id
}
