// Package studio runs the AI art studio: it validates generation requests
// against the signed-in identity, calls the image generator and keeps a
// gallery of the results.
package studio

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
	"github.com/artsi-ai/artsi/internal/imagegen"
	"github.com/artsi-ai/artsi/internal/notification"
)

// CostPerGeneration is the minimum balance needed to generate artwork.
// Credits are checked but never deducted.
const CostPerGeneration = 10

// Sessions exposes the signed-in identity.
type Sessions interface {
	Current() *identity.Identity
}

// Archiver copies a generated image somewhere durable and returns its URL.
type Archiver interface {
	Archive(ctx context.Context, artworkID, prompt, sourceURL string) (string, error)
}

// GenerateInput is the studio form.
type GenerateInput struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// Service coordinates artwork generation.
type Service struct {
	sessions  Sessions
	generator imagegen.Generator
	gallery   Gallery
	archiver  Archiver
	notifier  notification.Notifier
	logger    *slog.Logger
	now       func() time.Time

	generating atomic.Bool
}

// NewService wires the studio. archiver may be nil.
func NewService(sessions Sessions, generator imagegen.Generator, gallery Gallery, archiver Archiver, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(logger)
	}
	if gallery == nil {
		gallery = NewMemoryGallery()
	}
	return &Service{
		sessions:  sessions,
		generator: generator,
		gallery:   gallery,
		archiver:  archiver,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Styles returns the art style catalogue.
func (s *Service) Styles() []imagegen.Style {
	return imagegen.Styles()
}

// Generate validates the request, produces one image and adds it to the
// signed-in user's gallery.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (Artwork, error) {
	user := s.sessions.Current()
	if user == nil {
		return Artwork{}, errs.New(errs.KindUnauthenticated, "")
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return Artwork{}, s.reject(ctx, "Prompt Required", "Please enter a description for your artwork.")
	}
	style := in.Style
	if style == "" {
		style = imagegen.DefaultStyle
	}
	if _, ok := imagegen.LookupStyle(style); !ok {
		return Artwork{}, s.reject(ctx, "Unknown Style", fmt.Sprintf("Style %q is not available.", style))
	}
	if user.Credits < CostPerGeneration {
		return Artwork{}, s.reject(ctx, "Insufficient Credits", fmt.Sprintf("You need at least %d credits to generate artwork.", CostPerGeneration))
	}

	if !s.generating.CompareAndSwap(false, true) {
		return Artwork{}, errs.New(errs.KindBusy, "An artwork is already being generated.")
	}
	defer s.generating.Store(false)

	url, err := s.generator.Generate(ctx, in.Prompt, style)
	if err != nil {
		s.notify(ctx, notification.Failure("Generation Failed", errs.Message(err)))
		return Artwork{}, err
	}

	art := Artwork{
		ID:        uuid.New().String(),
		OwnerID:   user.ID,
		Prompt:    in.Prompt,
		Style:     style,
		URL:       url,
		CreatedAt: s.now().UTC(),
	}
	if s.archiver != nil {
		archived, err := s.archiver.Archive(ctx, art.ID, art.Prompt, art.URL)
		if err != nil {
			s.logger.Warn("archive artwork", "artwork_id", art.ID, "error", err)
		} else {
			art.ArchiveURL = archived
		}
	}
	if err := s.gallery.Add(ctx, art); err != nil {
		return Artwork{}, errs.Wrap(errs.KindInternal, err, "")
	}

	s.logger.Info("artwork generated", "artwork_id", art.ID, "user_id", user.ID, "style", style)
	s.notify(ctx, notification.Info("Artwork Generated!", "Your AI artwork has been created successfully."))
	return art, nil
}

// Artworks lists the signed-in user's gallery, newest first.
func (s *Service) Artworks(ctx context.Context) ([]Artwork, error) {
	user := s.sessions.Current()
	if user == nil {
		return nil, errs.New(errs.KindUnauthenticated, "")
	}
	arts, err := s.gallery.List(ctx, user.ID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "")
	}
	return arts, nil
}

// Artwork returns one of the signed-in user's artworks.
func (s *Service) Artwork(ctx context.Context, id string) (Artwork, error) {
	user := s.sessions.Current()
	if user == nil {
		return Artwork{}, errs.New(errs.KindUnauthenticated, "")
	}
	art, err := s.gallery.Get(ctx, id)
	if err != nil || art.OwnerID != user.ID {
		return Artwork{}, ErrArtworkNotFound
	}
	return art, nil
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
