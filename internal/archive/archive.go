// Package archive copies generated artwork into object storage so it
// outlives the short-lived URLs returned by the image API.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultURLTTL is how long presigned download links stay valid.
const DefaultURLTTL = 24 * time.Hour

const maxFilenamePrompt = 30

// ObjectStore is the subset of object storage the archive needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service downloads images and stores them under a stable key.
type Service struct {
	store  ObjectStore
	http   *http.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds an archive over store. A zero ttl uses DefaultURLTTL.
func NewService(store ObjectStore, httpClient *http.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, http: httpClient, ttl: ttl, logger: logger}
}

// Archive copies the image at sourceURL into storage and returns a presigned
// download URL for the copy.
func (s *Service) Archive(ctx context.Context, artworkID, prompt, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	key := ObjectKey(artworkID, prompt)
	if err := s.store.Put(ctx, key, contentType, resp.Body); err != nil {
		return "", fmt.Errorf("store image %s: %w", key, err)
	}

	url, err := s.store.PresignGet(ctx, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	s.logger.Info("artwork archived", "artwork_id", artworkID, "key", key)
	return url, nil
}

// ObjectKey is the storage key for an artwork image.
func ObjectKey(artworkID, prompt string) string {
	return "artworks/" + artworkID + "/" + Filename(prompt)
}

// Filename is the download name for an artwork: artsi_<safe prompt>.png.
func Filename(prompt string) string {
	return "artsi_" + SafeFilename(prompt) + ".png"
}

// SafeFilename keeps the first 30 characters of prompt, replaces anything
// that is not an ASCII letter or digit with '_' and lower-cases the result.
func SafeFilename(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > maxFilenamePrompt {
		runes = runes[:maxFilenamePrompt]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
