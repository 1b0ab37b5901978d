// Package minting simulates turning an artwork into an NFT. No chain is
// contacted: the service walks a fixed sequence of timed steps and returns a
// receipt.
package minting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/notification"
	"github.com/artsi-ai/artsi/internal/studio"
)

// DefaultStepDelay is the pause between simulated steps.
const DefaultStepDelay = 1500 * time.Millisecond

// Royalty bounds, in percent. DefaultRoyalty is used when none is given.
const (
	DefaultRoyalty = 5
	MinRoyalty     = 0
	MaxRoyalty     = 10
)

// Steps is the simulated mint sequence.
var Steps = []string{
	"Uploading to IPFS",
	"Creating metadata",
	"Deploying contract",
	"Minting NFT",
	"Complete!",
}

// Sessions exposes the signed-in identity.
type Sessions interface {
	Current() *identity.Identity
}

// Artworks resolves an artwork owned by the signed-in user.
type Artworks interface {
	Artwork(ctx context.Context, id string) (studio.Artwork, error)
}

// MintInput is the mint form.
type MintInput struct {
	ArtworkID   string `json:"artworkId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Royalty     *int   `json:"royalty"`
}

// Progress reports one completed step.
type Progress struct {
	Step  int    `json:"step"`
	Total int    `json:"total"`
	Label string `json:"label"`
}

// Metadata is the token metadata that would be pinned.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Royalty     int      `json:"royalty"`
	Image       string   `json:"image"`
}

// Receipt describes a finished mint.
type Receipt struct {
	TokenID     string    `json:"tokenId"`
	ArtworkID   string    `json:"artworkId"`
	Owner       string    `json:"owner"`
	Metadata    Metadata  `json:"metadata"`
	Steps       []string  `json:"steps"`
	CompletedAt time.Time `json:"completedAt"`
}

// Service runs simulated mints, one at a time.
type Service struct {
	sessions Sessions
	artworks Artworks
	notifier notification.Notifier
	logger   *slog.Logger
	delay    time.Duration
	now      func() time.Time

	minting atomic.Bool
}

// NewService builds a mint simulator. A negative delay is treated as zero.
func NewService(sessions Sessions, artworks Artworks, notifier notification.Notifier, logger *slog.Logger, delay time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(logger)
	}
	if delay < 0 {
		delay = 0
	}
	return &Service{
		sessions: sessions,
		artworks: artworks,
		notifier: notifier,
		logger:   logger,
		delay:    delay,
		now:      time.Now,
	}
}

// Mint validates the request and walks the step sequence, calling progress
// after each step. Cancelling ctx aborts between steps.
func (s *Service) Mint(ctx context.Context, in MintInput, progress func(Progress)) (Receipt, error) {
	user := s.sessions.Current()
	if user == nil {
		return Receipt{}, errs.New(errs.KindUnauthenticated, "")
	}
	art, err := s.resolveArtwork(ctx, in.ArtworkID)
	if err != nil {
		return Receipt{}, s.reject(ctx, "No Image Selected", "Please select an artwork to mint as NFT.")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Receipt{}, s.reject(ctx, "Title Required", "Please enter a title for your NFT.")
	}
	if user.WalletAddress == "" {
		return Receipt{}, s.reject(ctx, "Wallet Required", "Please connect your wallet to mint NFTs.")
	}
	pct := royalty(in.Royalty)
	if pct < MinRoyalty || pct > MaxRoyalty {
		return Receipt{}, s.reject(ctx, "Invalid Royalty", fmt.Sprintf("Royalty must be between %d%% and %d%%.", MinRoyalty, MaxRoyalty))
	}

	if !s.minting.CompareAndSwap(false, true) {
		return Receipt{}, errs.New(errs.KindBusy, "A mint is already in progress.")
	}
	defer s.minting.Store(false)

	receipt := Receipt{
		TokenID:   uuid.New().String(),
		ArtworkID: art.ID,
		Owner:     user.WalletAddress,
		Metadata: Metadata{
			Title:       title,
			Description: in.Description,
			Tags:        splitTags(in.Tags),
			Royalty:     pct,
			Image:       imageOf(art),
		},
	}
	for i, label := range Steps {
		if err := s.wait(ctx); err != nil {
			s.logger.Warn("mint aborted", "artwork_id", art.ID, "step", label, "error", err)
			return Receipt{}, err
		}
		receipt.Steps = append(receipt.Steps, label)
		if progress != nil {
			progress(Progress{Step: i + 1, Total: len(Steps), Label: label})
		}
	}
	receipt.CompletedAt = s.now().UTC()

	s.logger.Info("nft minted", "token_id", receipt.TokenID, "artwork_id", art.ID, "owner", receipt.Owner)
	s.notify(ctx, notification.Info("NFT Minted Successfully!", "Your artwork has been minted as an NFT on Ethereum."))
	return receipt, nil
}

func (s *Service) resolveArtwork(ctx context.Context, id string) (studio.Artwork, error) {
	if strings.TrimSpace(id) == "" {
		return studio.Artwork{}, studio.ErrArtworkNotFound
	}
	return s.artworks.Artwork(ctx, id)
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) reject(ctx context.Context, title, description string) error {
	s.notify(ctx, notification.Failure(title, description))
	return errs.New(errs.KindValidationFailed, description)
}

func (s *Service) notify(ctx context.Context, notice notification.Notice) {
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Warn("notify", "title", notice.Title, "error", err)
	}
}

func splitTags(raw string) []string {
	tags := make([]string, 0)
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func royalty(v *int) int {
	if v == nil {
		return DefaultRoyalty
	}
	return *v
}

func imageOf(art studio.Artwork) string {
	if art.ArchiveURL != "" {
		return art.ArchiveURL
	}
	return art.URL
}
