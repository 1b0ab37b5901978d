// Package errs defines the error kinds shared by the session, wallet, studio
// and minting packages together with their user-facing messages and HTTP
// status codes.
package errs

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindConnectorNotFound   Kind = "connector_not_found"
	KindWalletRequestFailed Kind = "wallet_request_failed"
	KindGenerationFailed    Kind = "generation_failed"
	KindValidationFailed    Kind = "validation_failed"
	KindNotAllowed          Kind = "not_allowed"
	KindBusy                Kind = "busy"
	KindUnauthenticated     Kind = "unauthenticated"
	KindInternal            Kind = "internal"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConnectorNotFound   = &Error{Kind: KindConnectorNotFound}
	ErrWalletRequestFailed = &Error{Kind: KindWalletRequestFailed}
	ErrGenerationFailed    = &Error{Kind: KindGenerationFailed}
	ErrValidationFailed    = &Error{Kind: KindValidationFailed}
	ErrNotAllowed          = &Error{Kind: KindNotAllowed}
	ErrBusy                = &Error{Kind: KindBusy}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
	ErrInternal            = &Error{Kind: KindInternal}
)

type template struct {
	message string
	status  int
}

var kindMap = map[Kind]template{
	KindConnectorNotFound:   {message: "Wallet connector not found.", status: http.StatusNotFound},
	KindWalletRequestFailed: {message: "The request was rejected or failed. Please try again.", status: http.StatusBadGateway},
	KindGenerationFailed:    {message: "Failed to generate image. Please try again.", status: http.StatusBadGateway},
	KindValidationFailed:    {message: "Invalid request.", status: http.StatusBadRequest},
	KindNotAllowed:          {message: "Action not allowed.", status: http.StatusForbidden},
	KindBusy:                {message: "Another request is already in progress.", status: http.StatusConflict},
	KindUnauthenticated:     {message: "Please sign in to continue.", status: http.StatusUnauthorized},
	KindInternal:            {message: "Something went wrong. Please try again.", status: http.StatusInternalServerError},
}

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New builds an error of the given kind. An empty message falls back to the
// kind's default text.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.userMessage()
	if e.Err != nil {
		return string(e.Kind) + ": " + msg + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, ErrBusy) works for any busy error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) userMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if tpl, ok := kindMap[e.Kind]; ok {
		return tpl.message
	}
	return kindMap[KindInternal].message
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the text that may be shown to a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.userMessage()
	}
	return kindMap[KindInternal].message
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	if tpl, ok := kindMap[KindOf(err)]; ok {
		return tpl.status
	}
	return http.StatusInternalServerError
}
