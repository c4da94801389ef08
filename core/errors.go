package core

import (
	"errors"

	"github.com/agentauth/go-agentauth/grant"
)

// Sentinel errors for grant verification.
var (
	// ErrTokenMissing is returned when no token was presented and
	// credentials are required.
	ErrTokenMissing = errors.New("authorization token missing")

	// ErrGrantRejected matches every policy rejection via errors.Is.
	// The concrete error is always a *RejectionError.
	ErrGrantRejected = errors.New("grant rejected")

	// ErrGrantNotFound is returned when no grant is stored in the
	// context.
	ErrGrantNotFound = errors.New("grant not found in context")

	// ErrVerifierNil is returned by New when no verifier was
	// configured.
	ErrVerifierNil = errors.New("verifier cannot be nil (use WithVerifier)")
)

// RejectionError adapts a policy rejection to the error plumbing of
// transport boundaries. The rejection itself stays data: callers
// unwrap with errors.As and read the structured fields.
type RejectionError struct {
	Rejection *grant.Rejection
}

// Error returns the human-readable rejection reason.
func (e *RejectionError) Error() string {
	return e.Rejection.Reason()
}

// Is allows the error to be compared with ErrGrantRejected.
func (e *RejectionError) Is(target error) bool {
	return target == ErrGrantRejected
}
