package grpc

import (
	"errors"

	"github.com/agentauth/go-agentauth/core"
)

// Option configures the Interceptor.
type Option func(*Interceptor) error

// Sentinel errors for configuration validation.
var (
	ErrVerifierNil       = errors.New("verifier cannot be nil")
	ErrTokenExtractorNil = errors.New("token extractor cannot be nil")
	ErrContextFuncNil    = errors.New("verification context func cannot be nil")
	ErrErrorHandlerNil   = errors.New("error handler cannot be nil")
	ErrLoggerNil         = errors.New("logger cannot be nil")
)

// WithVerifier sets the grant verifier (REQUIRED).
func WithVerifier(v core.Verifier) Option {
	return func(i *Interceptor) error {
		if v == nil {
			return ErrVerifierNil
		}
		i.verifier = v
		return nil
	}
}

// WithCredentialsOptional sets whether calls without a token are
// allowed to proceed without a grant in context.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(i *Interceptor) error {
		i.credentialsOptional = value
		return nil
	}
}

// WithTokenExtractor sets a custom token extractor.
//
// Default: MetadataTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		i.tokenExtractor = e
		return nil
	}
}

// WithVerificationContext sets the function building the per-call
// verification context.
//
// Default: MetadataVerificationContext
func WithVerificationContext(f VerificationContextFunc) Option {
	return func(i *Interceptor) error {
		if f == nil {
			return ErrContextFuncNil
		}
		i.contextFunc = f
		return nil
	}
}

// WithErrorHandler sets the handler converting verification errors to
// gRPC status errors.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(i *Interceptor) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		i.errorHandler = h
		return nil
	}
}

// WithExcludedMethods configures full method names (e.g.
// "/package.Service/Method") to exclude from grant verification.
func WithExcludedMethods(methods []string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
func WithLogger(logger core.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return ErrLoggerNil
		}
		i.logger = logger
		return nil
	}
}
