package grant

import (
	"fmt"
	"math"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Request carries the caller-supplied fields for issuing a grant.
// IssuedAt, ExpiresAt and Issuer are never caller-supplied: the issuer
// reads the clock and computes the expiry from the relative Duration.
type Request struct {
	Principal string
	Agent     string
	Scope     []string
	Limit     float64
	Currency  string
	Duration  time.Duration
}

// Issuer builds signed grants. It is stateless and safe for concurrent
// use; the only side effect of Issue is reading the clock.
type Issuer struct {
	secret     []byte
	issuerName string
	clock      func() time.Time

	rejectNonPositiveDuration bool
}

// NewIssuer constructs an Issuer signing with the given symmetric
// secret. The secret must be shared with the verifier and nothing else.
func NewIssuer(secret []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}

	i := &Issuer{
		secret:     secret,
		issuerName: IssuerName,
		clock:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return i, nil
}

// Issue assembles the claim set, signs it with HS256 and returns the
// compact token string. It fails with an ErrInvalidInput-wrapped error
// when a required field is missing or malformed.
//
// A non-positive duration is not an error by default: it produces a
// grant that is already expired, which the verifier rejects like any
// other expired grant. Use WithRejectNonPositiveDuration to turn it
// into a construction-time error instead.
func (i *Issuer) Issue(req Request) (string, error) {
	if err := i.validate(req); err != nil {
		return "", err
	}

	// RFC 3339 carries whole seconds, so the claim set is pinned to
	// second precision before signing.
	issuedAt := i.clock().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(req.Duration).Truncate(time.Second)

	tok, err := jwt.NewBuilder().
		Claim(claimPrincipal, req.Principal).
		Claim(claimAgent, req.Agent).
		Claim(claimScope, req.Scope).
		Claim(claimLimit, req.Limit).
		Claim(claimCurrency, req.Currency).
		Claim(claimIssuedAt, issuedAt.Format(time.RFC3339)).
		Claim(claimExpiresAt, expiresAt.Format(time.RFC3339)).
		Claim(claimIssuer, i.issuerName).
		Build()
	if err != nil {
		return "", fmt.Errorf("could not build the claim set: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", fmt.Errorf("could not sign the grant: %w", err)
	}

	return string(signed), nil
}

func (i *Issuer) validate(req Request) error {
	if req.Principal == "" {
		return fmt.Errorf("%w: principal is required", ErrInvalidInput)
	}
	if req.Agent == "" {
		return fmt.Errorf("%w: agent is required", ErrInvalidInput)
	}
	if len(req.Scope) == 0 {
		return fmt.Errorf("%w: scope list is required", ErrInvalidInput)
	}
	for _, s := range req.Scope {
		if s == "" {
			return fmt.Errorf("%w: scope entries must be non-empty", ErrInvalidInput)
		}
	}
	if math.IsNaN(req.Limit) || math.IsInf(req.Limit, 0) {
		return fmt.Errorf("%w: limit must be a finite number", ErrInvalidInput)
	}
	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	if req.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	if i.rejectNonPositiveDuration && req.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	return nil
}
