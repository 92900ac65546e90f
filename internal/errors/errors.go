// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Forbidden
	NotFound
)

// Error carries a kind and a client-safe message. Err is the underlying cause and is
// only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewBadRequest(msg string) error {
	return &Error{Kind: BadRequest, Message: msg}
}

func NewUnauthorized(msg string, cause error) error {
	return &Error{Kind: Unauthorized, Message: msg, Err: cause}
}

func NewForbidden(msg string) error {
	return &Error{Kind: Forbidden, Message: msg}
}

func NewInternal(msg string, cause error) error {
	return &Error{Kind: Internal, Message: msg, Err: cause}
}

// Helper constructors for the records handlers look up.
func NewCharityNotFound(id string) error {
	return &Error{Kind: NotFound, Message: "Charity not found", Err: fmt.Errorf("charity %q", id)}
}

func NewCampaignNotFound(id string) error {
	return &Error{Kind: NotFound, Message: "Campaign not found", Err: fmt.Errorf("campaign %q", id)}
}

func NewPaymentSecretNotFound(campaignID string) error {
	return &Error{Kind: NotFound, Message: "Payment secret not found", Err: fmt.Errorf("campaign %q", campaignID)}
}

func NewPostNotFound(id string) error {
	return &Error{Kind: NotFound, Message: "Post not found", Err: fmt.Errorf("post %q", id)}
}

// KindOf reports the kind of err. Anything not built by this package is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal error"
}

func StatusCode(err error) int {
	switch KindOf(err) {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
