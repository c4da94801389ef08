package agentauth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agentauth/go-agentauth/core"
	"github.com/agentauth/go-agentauth/grant"
)

// Middleware gates HTTP actions on a verified AgentAuth grant.
type Middleware struct {
	core                *core.Core
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	contextFunc         VerificationContextFunc
	verifyOnOptions     bool
	exclusionURLHandler ExclusionURLHandler
	logger              Logger
	metrics             Metrics
	tracer              Tracer

	// Temporary fields used during construction
	verifier            core.Verifier
	credentialsOptional bool
}

// VerificationContextFunc builds the per-request verification context:
// the scope the pending action needs, the requested amount, and
// optionally the identity of the presenting agent. It is called before
// the grant is verified.
type VerificationContextFunc func(r *http.Request) (grant.VerificationContext, error)

// ExclusionURLHandler is a function that takes an http.Request and
// returns true if the request should be excluded from grant
// verification.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new Middleware instance with the supplied options.
// WithVerifier and WithVerificationContext are required.
//
// Example:
//
//	middleware, err := agentauth.New(
//	    agentauth.WithVerifier(verifier),
//	    agentauth.WithVerificationContext(agentauth.BodyVerificationContext()),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		// Verify OPTIONS requests by default
		verifyOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	m.applyDefaults()

	if err := m.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return m, nil
}

func (m *Middleware) validate() error {
	if m.verifier == nil {
		return ErrVerifierNil
	}
	if m.contextFunc == nil {
		return ErrContextFuncNil
	}
	return nil
}

func (m *Middleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = &NoopTracer{}
	}
}

func (m *Middleware) createCore() error {
	coreOpts := []core.Option{
		core.WithVerifier(m.verifier),
		core.WithCredentialsOptional(m.credentialsOptional),
	}
	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}

	coreInstance, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.core = coreInstance
	return nil
}

// CheckGrant is the main middleware function. It is passed an
// http.Handler which is called only if the presented grant passes
// verification for this request's verification context.
func (m *Middleware) CheckGrant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debugf("skipping grant verification for excluded URL %s %s", r.Method, r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		if !m.verifyOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debugf("skipping grant verification for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.tokenExtractor(r)
		if err != nil {
			// An error here means the token was malformed in
			// transport, not that it was missing.
			if m.logger != nil {
				m.logger.Errorf("failed to extract token from request: %v", err)
			}
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		vctx, err := m.contextFunc(r)
		if err != nil {
			if m.logger != nil {
				m.logger.Errorf("failed to build verification context: %v", err)
			}
			m.errorHandler(w, r, fmt.Errorf("error building verification context: %w", err))
			return
		}

		span := m.tracer.StartSpan("agentauth.verify")
		start := time.Now()

		g, err := m.core.CheckGrant(r.Context(), token, vctx)

		m.metrics.ObserveHistogram("agentauth_verification_duration_seconds",
			time.Since(start).Seconds(), map[string]string{"result": verificationResult(err)})
		m.metrics.IncCounter("agentauth_verifications_total",
			map[string]string{"result": verificationResult(err)})
		span.SetTag("agentauth.result", verificationResult(err))
		span.Finish()

		if err != nil {
			if m.logger != nil {
				m.logger.Infof("grant verification failed for %s %s: %v", r.Method, r.URL.Path, err)
			}
			m.errorHandler(w, r, err)
			return
		}

		// With optional credentials and no token, the action proceeds
		// without a grant in context.
		if g == nil {
			next.ServeHTTP(w, r)
			return
		}

		r = r.Clone(core.SetGrant(r.Context(), g))
		next.ServeHTTP(w, r)
	})
}

// verificationResult maps a CheckGrant error to a metrics label.
func verificationResult(err error) string {
	if err == nil {
		return "valid"
	}

	var rejErr *core.RejectionError
	if errors.As(err, &rejErr) {
		return rejErr.Rejection.Kind.String()
	}
	if errors.Is(err, core.ErrTokenMissing) {
		return "token_missing"
	}
	return "error"
}
