/*
Package grant implements the AgentAuth token lifecycle: issuing signed
authorization grants that delegate a bounded capability from a human
principal to a named software agent, and verifying presented grants
against a per-request verification context.

A grant is a self-contained HS256-signed JWT whose payload carries the
authorization claim set (principal, agent, scope, limit, currency,
issuedAt, expiresAt, issuer). Tokens are stateless: there is no
persistence and no revocation before expiry.

# Issuing

	issuer, err := grant.NewIssuer([]byte(secret))
	if err != nil {
	    log.Fatal(err)
	}

	token, err := issuer.Issue(grant.Request{
	    Principal: "user_123",
	    Agent:     "agent_shopping",
	    Scope:     []string{"cloud_purchase"},
	    Limit:     50,
	    Currency:  "USD",
	    Duration:  time.Hour,
	})

# Verifying

	verifier, err := grant.NewVerifier([]byte(secret))
	if err != nil {
	    log.Fatal(err)
	}

	outcome := verifier.Verify(ctx, token, grant.VerificationContext{
	    RequiredScope:   "cloud_purchase",
	    Amount:          20,
	    RequestingAgent: "agent_shopping",
	})
	if !outcome.Valid {
	    fmt.Println(outcome.Rejection.Reason())
	}

Verification applies an ordered predicate chain and short-circuits on
the first failure: signature, expiry, agent binding, scope membership,
spending limit. A failed verification is an expected business outcome
and is reported as an Outcome carrying a structured Rejection, never as
an error.

The agent-binding check is the theft-prevention mechanism: a grant is
authorization for exactly one named agent, and presenting it under a
different agent identity is rejected even when the signature is valid
and the grant is unexpired.
*/
package grant
