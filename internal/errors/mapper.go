// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Normalize turns any error leaving a service into an *Error.
// Business errors pass through; everything else is a store failure.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindUnavailable, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnavailable, Message: "request was canceled", Err: err}

	default:
		return Unavailable(err)
	}
}

// Map converts service errors into gRPC-friendly status errors.
func Map(err error) error {
	if err == nil {
		return nil
	}
	e := Normalize(err)

	msg := e.Message
	if e.Kind != KindUnavailable {
		msg = string(e.Kind) + ": " + e.Message
	}
	return status.Error(GRPCCode(e.Kind), msg)
}

// GRPCCode is the gRPC status code for a Kind.
func GRPCCode(k Kind) codes.Code {
	switch k {
	case KindAgeGroupMismatch, KindNotAuthorized, KindPremiumRequired:
		return codes.PermissionDenied
	case KindAlreadyLiked, KindRequestExists, KindAlreadyFriends, KindAlreadyFavorited:
		return codes.AlreadyExists
	case KindRequestAlreadyProcessed:
		return codes.FailedPrecondition
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindRateLimitExceeded, KindCooldownActive:
		return codes.ResourceExhausted
	case KindUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// HTTPStatus is the REST status code for err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch Normalize(err).Kind {
	case KindAgeGroupMismatch, KindNotAuthorized, KindPremiumRequired:
		return http.StatusForbidden
	case KindAlreadyLiked, KindRequestExists, KindAlreadyFriends, KindAlreadyFavorited, KindRequestAlreadyProcessed:
		return http.StatusConflict
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimitExceeded, KindCooldownActive:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
