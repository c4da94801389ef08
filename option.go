package agentauth

import (
	"errors"
	"net/http"

	"github.com/agentauth/go-agentauth/core"
)

// Option configures the Middleware. Options return an error for
// validation failures.
type Option func(*Middleware) error

// Sentinel errors for configuration validation.
var (
	ErrVerifierNil       = errors.New("verifier cannot be nil (use WithVerifier)")
	ErrContextFuncNil    = errors.New("verification context func cannot be nil (use WithVerificationContext)")
	ErrErrorHandlerNil   = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrExclusionsEmpty   = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil         = errors.New("logger cannot be nil")
	ErrMetricsNil        = errors.New("metrics cannot be nil")
	ErrTracerNil         = errors.New("tracer cannot be nil")
)

// WithVerifier sets the grant verifier used to check presented tokens
// (REQUIRED). Typically a *grant.Verifier.
//
// Example:
//
//	verifier, err := grant.NewVerifier(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := agentauth.New(
//	    agentauth.WithVerifier(verifier),
//	    agentauth.WithVerificationContext(agentauth.BodyVerificationContext()),
//	)
func WithVerifier(v core.Verifier) Option {
	return func(m *Middleware) error {
		if v == nil {
			return ErrVerifierNil
		}
		m.verifier = v
		return nil
	}
}

// WithVerificationContext sets the function that builds the
// per-request verification context (REQUIRED). See
// StaticVerificationContext, QueryVerificationContext and
// BodyVerificationContext for ready-made implementations.
func WithVerificationContext(f VerificationContextFunc) Option {
	return func(m *Middleware) error {
		if f == nil {
			return ErrContextFuncNil
		}
		m.contextFunc = f
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional. If
// set to true, a request without a token proceeds without a grant in
// context.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithVerifyOnOptions sets whether OPTIONS requests should have their
// grant verified.
//
// Default: true (OPTIONS requests are verified)
func WithVerifyOnOptions(value bool) Option {
	return func(m *Middleware) error {
		m.verifyOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when errors occur during
// verification. See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the token from the
// request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URL patterns to exclude from grant
// verification. URLs can be full URLs or just paths.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware. The logger is
// used throughout the verification flow in both middleware and core.
//
// Example:
//
//	middleware, err := agentauth.New(
//	    agentauth.WithVerifier(verifier),
//	    agentauth.WithVerificationContext(ctxFunc),
//	    agentauth.WithLogger(agentauth.NewLogrusLogger(logrus.StandardLogger())),
//	)
func WithLogger(logger Logger) Option {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics sets an optional metrics sink for the middleware.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer sets an optional tracer for the middleware.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}
