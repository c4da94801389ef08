package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agentauth/go-agentauth/core"
	"github.com/agentauth/go-agentauth/grant"
)

// ErrorHandler converts verification errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps grant verification errors to gRPC status
// codes: a missing token is Unauthenticated, a policy rejection is
// PermissionDenied carrying the specific reason (an invalid signature
// stays Unauthenticated), and malformed metadata is InvalidArgument.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	var rejErr *core.RejectionError
	if errors.As(err, &rejErr) {
		if rejErr.Rejection.Kind == grant.KindInvalidSignature {
			return status.Error(codes.Unauthenticated, rejErr.Rejection.Reason())
		}
		return status.Error(codes.PermissionDenied, rejErr.Rejection.Reason())
	}

	if errors.Is(err, core.ErrTokenMissing) {
		return status.Error(codes.Unauthenticated, "missing credentials")
	}

	if errors.Is(err, ErrMultipleAuthHeaders) ||
		errors.Is(err, ErrInvalidAuthFormat) ||
		errors.Is(err, ErrUnsupportedScheme) ||
		errors.Is(err, ErrInvalidAmount) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	// Unknown verification failures stay Unauthenticated so they do
	// not leak as internal errors.
	return status.Error(codes.Unauthenticated, "invalid or malformed token")
}
