package grant

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier checks presented grants. Verification is a pure function of
// the token, the verification context, the clock and the shared secret:
// there is no shared mutable state, so a Verifier is safe for
// unbounded concurrent use.
type Verifier struct {
	secret     []byte
	issuerName string
	clock      func() time.Time
}

// NewVerifier constructs a Verifier for grants signed with the given
// symmetric secret.
func NewVerifier(secret []byte, opts ...VerifierOption) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}

	v := &Verifier{
		secret:     secret,
		issuerName: IssuerName,
		clock:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// Verify applies the ordered predicate chain to the presented token and
// short-circuits on the first failure:
//
//  1. signature (only HS256 under the shared secret is accepted; any
//     structural malformation folds into the same rejection)
//  2. expiry
//  3. agent binding, only when vctx.RequestingAgent is set
//  4. scope membership
//  5. spending limit
//
// A failed check is an expected business outcome and is returned as an
// Outcome carrying the rejection, never as an error. Each call
// re-validates everything from scratch: the same token can verify now
// and be rejected later purely because the clock passed its expiry.
func (v *Verifier) Verify(_ context.Context, token string, vctx VerificationContext) Outcome {
	// jwt.Parse with a pinned HS256 key both checks the signature and
	// rejects tokens declaring any other algorithm, which closes the
	// algorithm-substitution hole. Claim validation is disabled here;
	// expiry uses the claim set's own expiresAt field below.
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(false),
	)
	if err != nil {
		return reject(&Rejection{Kind: KindInvalidSignature})
	}

	g, err := decodeGrant(tok)
	if err != nil || g.Issuer != v.issuerName {
		return reject(&Rejection{Kind: KindInvalidSignature})
	}

	if !v.clock().Before(g.ExpiresAt) {
		return reject(&Rejection{Kind: KindExpired})
	}

	if vctx.RequestingAgent != "" && vctx.RequestingAgent != g.Agent {
		return reject(&Rejection{
			Kind:            KindAgentMismatch,
			RequestingAgent: vctx.RequestingAgent,
			BoundAgent:      g.Agent,
		})
	}

	if !g.HasScope(vctx.RequiredScope) {
		return reject(&Rejection{
			Kind:  KindScopeDenied,
			Scope: vctx.RequiredScope,
		})
	}

	if vctx.Amount > g.Limit {
		return reject(&Rejection{
			Kind:   KindLimitExceeded,
			Amount: vctx.Amount,
			Limit:  g.Limit,
		})
	}

	return accept(g)
}
