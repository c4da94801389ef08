package core

import "errors"

// Option configures the Core. Options return an error for validation
// failures.
type Option func(*Core) error

// ErrLoggerNil is returned when a nil logger is passed to WithLogger.
var ErrLoggerNil = errors.New("logger cannot be nil")

// WithVerifier sets the grant verifier (REQUIRED).
func WithVerifier(v Verifier) Option {
	return func(c *Core) error {
		if v == nil {
			return ErrVerifierNil
		}
		c.verifier = v
		return nil
	}
}

// WithCredentialsOptional sets whether a missing token is acceptable.
// When true, CheckGrant returns (nil, nil) for an empty token and the
// action proceeds without a grant in context.
//
// Default: false (credentials required).
func WithCredentialsOptional(value bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = value
		return nil
	}
}

// WithLogger sets an optional logger for the engine.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return ErrLoggerNil
		}
		c.logger = logger
		return nil
	}
}
