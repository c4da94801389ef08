package core

import (
	"context"
	"time"

	"github.com/agentauth/go-agentauth/grant"
)

// Verifier is the interface the engine needs from the grant layer.
// *grant.Verifier satisfies it.
type Verifier interface {
	Verify(ctx context.Context, token string, vctx grant.VerificationContext) grant.Outcome
}

// Logger defines an optional logging interface for the engine.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Core is the transport-agnostic verification engine. It contains the
// relying-party logic without any dependency on a specific transport.
type Core struct {
	verifier            Verifier
	credentialsOptional bool
	logger              Logger
}

// New constructs a Core with the supplied options. WithVerifier is
// required.
func New(opts ...Option) (*Core, error) {
	c := &Core{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.verifier == nil {
		return nil, ErrVerifierNil
	}

	return c, nil
}

// CheckGrant verifies a presented token against the per-request
// verification context and returns the recovered claim set.
//
//   - If token is empty and credentials are optional, returns (nil, nil).
//   - If token is empty and credentials are required, returns
//     ErrTokenMissing.
//   - On a policy rejection, returns a *RejectionError (which matches
//     ErrGrantRejected via errors.Is).
//
// Rejections are expected business outcomes: callers surface the reason
// to the client rather than treating it as an internal fault.
func (c *Core) CheckGrant(ctx context.Context, token string, vctx grant.VerificationContext) (*grant.Grant, error) {
	if token == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debugf("no token provided, but credentials are optional")
			}
			return nil, nil
		}

		if c.logger != nil {
			c.logger.Warnf("no token provided and credentials are required")
		}
		return nil, ErrTokenMissing
	}

	start := time.Now()
	outcome := c.verifier.Verify(ctx, token, vctx)
	duration := time.Since(start)

	if !outcome.Valid {
		if c.logger != nil {
			c.logger.Infof("grant rejected: %s (kind=%s, duration=%s)",
				outcome.Rejection.Reason(), outcome.Rejection.Kind, duration)
		}
		return nil, &RejectionError{Rejection: outcome.Rejection}
	}

	if c.logger != nil {
		c.logger.Debugf("grant verified for principal=%s agent=%s (duration=%s)",
			outcome.Grant.Principal, outcome.Grant.Agent, duration)
	}

	return outcome.Grant, nil
}
