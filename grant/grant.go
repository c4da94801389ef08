package grant

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// IssuerName is the fixed identity of the signing authority. It is
// written into every issued grant and checked on verification.
const IssuerName = "AgentAuth"

// Claim names used in the token payload.
const (
	claimPrincipal = "principal"
	claimAgent     = "agent"
	claimScope     = "scope"
	claimLimit     = "limit"
	claimCurrency  = "currency"
	claimIssuedAt  = "issuedAt"
	claimExpiresAt = "expiresAt"
	claimIssuer    = "issuer"
)

// Grant is the authorization claim set carried by a token. It is fully
// determined by the signed token and immutable once issued; the
// verifier only ever operates on the claim set recovered from the
// signature-checked payload, never on caller-supplied copies.
type Grant struct {
	// Principal identifies the human or account granting authority.
	Principal string `json:"principal"`

	// Agent identifies the specific agent instance the authority is
	// bound to. This is the anti-theft binding key.
	Agent string `json:"agent"`

	// Scope lists the permission labels the grant authorizes.
	// Membership tests are set-semantic; duplicates are permitted.
	Scope []string `json:"scope"`

	// Limit is the spending ceiling, denominated in Currency.
	Limit float64 `json:"limit"`

	// Currency is an ISO-style currency code.
	Currency string `json:"currency"`

	// IssuedAt is set by the issuer at construction time.
	IssuedAt time.Time `json:"issuedAt"`

	// ExpiresAt is computed by the issuer as IssuedAt plus the
	// requested duration. The grant is void once the current time
	// reaches it.
	ExpiresAt time.Time `json:"expiresAt"`

	// Issuer names the signing authority.
	Issuer string `json:"issuer"`
}

// HasScope reports whether s is one of the grant's scopes. Matching is
// flat exact string equality; there is no wildcard or hierarchy.
func (g *Grant) HasScope(s string) bool {
	for _, scope := range g.Scope {
		if scope == s {
			return true
		}
	}
	return false
}

// VerificationContext is the caller-supplied context for a single
// verification call. It is never persisted.
type VerificationContext struct {
	// RequiredScope is the scope the pending action needs.
	RequiredScope string

	// Amount is the requested spend, compared against the grant's
	// limit.
	Amount float64

	// RequestingAgent is the identity of the agent presenting the
	// token. When empty the agent-binding check is skipped.
	RequestingAgent string
}

// Outcome is the discriminated result of a verification call: either
// Valid with the recovered claim set, or a Rejection with exactly one
// reason. There is no partial validity.
type Outcome struct {
	Valid     bool
	Grant     *Grant
	Rejection *Rejection
}

func accept(g *Grant) Outcome {
	return Outcome{Valid: true, Grant: g}
}

func reject(r *Rejection) Outcome {
	return Outcome{Rejection: r}
}

// decodeGrant recovers the claim set from a parsed, signature-checked
// token. Any missing or mistyped claim is reported as an error; the
// verifier folds that into the signature rejection so that structural
// probing is indistinguishable from cryptographic failure.
func decodeGrant(tok jwt.Token) (*Grant, error) {
	g := &Grant{}

	var err error
	if g.Principal, err = stringClaim(tok, claimPrincipal); err != nil {
		return nil, err
	}
	if g.Agent, err = stringClaim(tok, claimAgent); err != nil {
		return nil, err
	}
	if g.Scope, err = stringSliceClaim(tok, claimScope); err != nil {
		return nil, err
	}
	if g.Limit, err = numberClaim(tok, claimLimit); err != nil {
		return nil, err
	}
	if g.Currency, err = stringClaim(tok, claimCurrency); err != nil {
		return nil, err
	}
	if g.IssuedAt, err = timeClaim(tok, claimIssuedAt); err != nil {
		return nil, err
	}
	if g.ExpiresAt, err = timeClaim(tok, claimExpiresAt); err != nil {
		return nil, err
	}
	if g.Issuer, err = stringClaim(tok, claimIssuer); err != nil {
		return nil, err
	}

	return g, nil
}

func stringClaim(tok jwt.Token, name string) (string, error) {
	raw, ok := tok.Get(name)
	if !ok {
		return "", fmt.Errorf("claim %q is missing", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("claim %q is not a string", name)
	}
	return s, nil
}

func stringSliceClaim(tok jwt.Token, name string) ([]string, error) {
	raw, ok := tok.Get(name)
	if !ok {
		return nil, fmt.Errorf("claim %q is missing", name)
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("claim %q contains a non-string element", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("claim %q is not a string list", name)
	}
}

func numberClaim(tok jwt.Token, name string) (float64, error) {
	raw, ok := tok.Get(name)
	if !ok {
		return 0, fmt.Errorf("claim %q is missing", name)
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("claim %q is not a number", name)
	}
}

func timeClaim(tok jwt.Token, name string) (time.Time, error) {
	s, err := stringClaim(tok, name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("claim %q is not an RFC 3339 timestamp: %w", name, err)
	}
	return t, nil
}

// Decode recovers the claim set from a token WITHOUT verifying its
// signature. It exists for display purposes only (for example echoing
// the payload back to the caller that just had the token issued) and
// must never be used to authorize anything.
func Decode(token string) (*Grant, error) {
	tok, err := jwt.Parse([]byte(token), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("could not parse the token: %w", err)
	}
	return decodeGrant(tok)
}

// ErrInvalidInput is wrapped by every construction-time validation
// failure reported by the issuer. Use errors.Is to detect it.
var ErrInvalidInput = errors.New("invalid grant input")
