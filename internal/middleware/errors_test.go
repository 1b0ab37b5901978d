package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/artsi-ai/artsi/internal/errs"
	"github.com/artsi-ai/artsi/internal/identity"
	"github.com/artsi-ai/artsi/internal/logging"
)

type stubSessions struct {
	user *identity.Identity
}

func (s stubSessions) Current() *identity.Identity { return s.user }

func TestErrorHandlerRendersKinds(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Use(RequestID(), Audit(logging.Discard()))
	app.Get("/validation", func(*fiber.Ctx) error {
		return errs.New(errs.KindValidationFailed, "Please enter a title for your NFT.")
	})
	app.Get("/foreign", func(*fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/fiber", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", fiber.StatusBadRequest, "Please enter a title for your NFT."},
		{"/foreign", fiber.StatusInternalServerError, "Something went wrong. Please try again."},
		{"/fiber", fiber.StatusTeapot, "short and stout"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status || body["error"] != tt.message {
			t.Fatalf("%s: got %d %v", tt.path, resp.StatusCode, body)
		}
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Fatalf("%s: missing request id header", tt.path)
		}
	}
}

func TestRequireSession(t *testing.T) {
	user := identity.NewEmail("ava@x.com")
	for _, tt := range []struct {
		name   string
		user   *identity.Identity
		status int
	}{
		{"signed out", nil, fiber.StatusUnauthorized},
		{"signed in", &user, fiber.StatusOK},
	} {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
			app.Get("/me", RequireSession(stubSessions{user: tt.user}), func(c *fiber.Ctx) error {
				return c.SendString(UserID(c))
			})
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) != "req-42" {
		t.Fatalf("expected caller request id to be echoed")
	}
}
