// Package errors defines the engine's error taxonomy. Services return *Error
// values; transports translate them once (Map for gRPC, HTTPStatus for REST).
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure. Business-rule kinds are deterministic for a given
// state; KindUnavailable marks transient store failures the caller may retry.
type Kind string

const (
	KindAgeGroupMismatch        Kind = "AGE_GROUP_MISMATCH"
	KindAlreadyLiked            Kind = "ALREADY_LIKED"
	KindRequestExists           Kind = "REQUEST_EXISTS"
	KindAlreadyFriends          Kind = "ALREADY_FRIENDS"
	KindAlreadyFavorited        Kind = "ALREADY_FAVORITED"
	KindRequestAlreadyProcessed Kind = "REQUEST_PROCESSED"
	KindNotAuthorized           Kind = "NOT_AUTHORIZED"
	KindNotFound                Kind = "NOT_FOUND"
	KindRateLimitExceeded       Kind = "RATE_LIMIT_EXCEEDED"
	KindCooldownActive          Kind = "COOLDOWN_ACTIVE"
	KindPremiumRequired         Kind = "PREMIUM_REQUIRED"
	KindInvalidArgument         Kind = "INVALID_ARGUMENT"
	KindUnavailable             Kind = "UNAVAILABLE"
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind    Kind
	Message string

	// Remaining and ResetAt are set for rate-limit and cooldown failures.
	Remaining *int
	ResetAt   *time.Time

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrAlreadyLiked) works for any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrAgeGroupMismatch        = &Error{Kind: KindAgeGroupMismatch}
	ErrAlreadyLiked            = &Error{Kind: KindAlreadyLiked}
	ErrRequestExists           = &Error{Kind: KindRequestExists}
	ErrAlreadyFriends          = &Error{Kind: KindAlreadyFriends}
	ErrAlreadyFavorited        = &Error{Kind: KindAlreadyFavorited}
	ErrRequestAlreadyProcessed = &Error{Kind: KindRequestAlreadyProcessed}
	ErrNotAuthorized           = &Error{Kind: KindNotAuthorized}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrRateLimitExceeded       = &Error{Kind: KindRateLimitExceeded}
	ErrCooldownActive          = &Error{Kind: KindCooldownActive}
	ErrPremiumRequired         = &Error{Kind: KindPremiumRequired}
	ErrInvalidArgument         = &Error{Kind: KindInvalidArgument}
	ErrUnavailable             = &Error{Kind: KindUnavailable}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func AgeGroupMismatch() *Error {
	return New(KindAgeGroupMismatch, "age group mismatch")
}

func AlreadyLiked() *Error { return New(KindAlreadyLiked, "already liked") }

func RequestExists() *Error { return New(KindRequestExists, "request already sent") }

func AlreadyFriends() *Error { return New(KindAlreadyFriends, "already friends") }

func AlreadyFavorited() *Error { return New(KindAlreadyFavorited, "already in favorites") }

func RequestAlreadyProcessed() *Error {
	return New(KindRequestAlreadyProcessed, "request already processed")
}

func NotAuthorized() *Error { return New(KindNotAuthorized, "not authorized") }

func NotFound(what string) *Error { return New(KindNotFound, what+" not found") }

func PremiumRequired() *Error { return New(KindPremiumRequired, "premium required") }

// InvalidArgument creates a validation error for bad caller input.
func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, msg) }

// RateLimited reports an exhausted daily window.
func RateLimited(resetAt time.Time) *Error {
	zero := 0
	return &Error{
		Kind:      KindRateLimitExceeded,
		Message:   "rate limit exceeded",
		Remaining: &zero,
		ResetAt:   &resetAt,
	}
}

// CooldownActive reports a suppressed action and when it expires.
func CooldownActive(expiresAt time.Time) *Error {
	return &Error{
		Kind:    KindCooldownActive,
		Message: "cooldown active",
		ResetAt: &expiresAt,
	}
}

// Unavailable wraps a store failure as a retryable error.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "store unavailable", Err: err}
}

// KindOf extracts the Kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As is a thin re-export so callers importing this package as svcErr don't
// also need the standard errors package.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
