// Package imagegen turns a prompt and an art style into an image URL using
// the OpenAI Images API.
package imagegen

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/artsi-ai/artsi/internal/errs"
)

// User-facing failure messages.
const (
	MsgNotInitialized = "OpenAI client is not initialized. Check your API key."
	MsgBilling        = "Image generation failed due to a billing issue with your OpenAI account."
	MsgGeneric        = "Failed to generate image. Please try again."
	MsgNoURL          = "No image URL returned from API."
)

// DefaultModel is the image model requested when none is configured.
const DefaultModel = openai.ImageModelDallE3

// Generator produces an image URL for a prompt in a style.
type Generator interface {
	Generate(ctx context.Context, prompt, style string) (string, error)
}

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client calls the Images API once per request with retries disabled.
type Client struct {
	api    *openai.Client
	model  openai.ImageModel
	logger *slog.Logger
}

// NewClient builds a client. Without an API key the client is left
// uninitialized and every call fails.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	model := openai.ImageModel(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{model: model, logger: logger}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("OpenAI API key is missing, image generation disabled")
		return c
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	api := openai.NewClient(opts...)
	c.api = &api
	return c
}

// BuildPrompt composes the prompt sent to the API.
func BuildPrompt(prompt, style string) string {
	return prompt + ", in the style of " + style + ", digital art, trending on artstation"
}

// Generate requests one 1024x1024 image and returns its URL. Every failure
// is a GenerationFailed error carrying a user-facing message.
func (c *Client) Generate(ctx context.Context, prompt, style string) (string, error) {
	if c.api == nil {
		return "", errs.New(errs.KindGenerationFailed, MsgNotInitialized)
	}

	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  BuildPrompt(prompt, style),
		Model:   c.model,
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityStandard,
	})
	if err != nil {
		c.logger.Error("generate image", "model", c.model, "error", err)
		return "", errs.Wrap(errs.KindGenerationFailed, err, failureMessage(err))
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errs.New(errs.KindGenerationFailed, MsgNoURL)
	}
	return resp.Data[0].URL, nil
}

// failureMessage maps an API or transport error to the text shown to users.
// Billing problems win over the API's own message.
func failureMessage(err error) string {
	var apiErr *openai.Error
	isAPI := errors.As(err, &apiErr)

	text := err.Error()
	if isAPI {
		text += " " + apiErr.Message + " " + apiErr.Code + " " + apiErr.Type
	}
	if strings.Contains(strings.ToLower(text), "billing") {
		return MsgBilling
	}
	if isAPI && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgGeneric
}
