package grant

import (
	"errors"
	"time"
)

// Sentinel errors for configuration validation.
var (
	ErrSecretMissing = errors.New("signing secret is required but was empty")
	ErrClockNil      = errors.New("clock cannot be nil")
	ErrIssuerEmpty   = errors.New("issuer name cannot be empty")
)

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer) error

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier) error

// WithClock overrides the issuer's time source. Tests use this to pin
// issuedAt.
//
// Default: time.Now.
func WithClock(clock func() time.Time) IssuerOption {
	return func(i *Issuer) error {
		if clock == nil {
			return ErrClockNil
		}
		i.clock = clock
		return nil
	}
}

// WithIssuerName overrides the issuer identity written into grants.
//
// Default: IssuerName.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) error {
		if name == "" {
			return ErrIssuerEmpty
		}
		i.issuerName = name
		return nil
	}
}

// WithRejectNonPositiveDuration makes Issue fail with ErrInvalidInput
// when the requested duration is zero or negative, instead of issuing a
// grant that is already expired.
//
// Default: false (a pre-expired grant is issued and the verifier
// rejects it as expired).
func WithRejectNonPositiveDuration(value bool) IssuerOption {
	return func(i *Issuer) error {
		i.rejectNonPositiveDuration = value
		return nil
	}
}

// WithVerifierClock overrides the verifier's time source. Tests use
// this to step the clock across the expiry boundary.
//
// Default: time.Now.
func WithVerifierClock(clock func() time.Time) VerifierOption {
	return func(v *Verifier) error {
		if clock == nil {
			return ErrClockNil
		}
		v.clock = clock
		return nil
	}
}

// WithExpectedIssuer overrides the issuer identity the verifier
// requires in the claim set. Grants naming any other issuer are
// rejected with the signature rejection.
//
// Default: IssuerName.
func WithExpectedIssuer(name string) VerifierOption {
	return func(v *Verifier) error {
		if name == "" {
			return ErrIssuerEmpty
		}
		v.issuerName = name
		return nil
	}
}
