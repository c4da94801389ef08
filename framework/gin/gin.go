// Package agentauthgin provides a Gin middleware adapter for verifying
// AgentAuth grants.
package agentauthgin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	agentauth "github.com/agentauth/go-agentauth"
	"github.com/agentauth/go-agentauth/core"
	"github.com/agentauth/go-agentauth/grant"
)

// DefaultGrantKey is the gin context key the verified grant is stored
// under.
const DefaultGrantKey = "agentauth_grant"

var (
	ErrMissingGrant = errors.New("no grant found in context")
	ErrInvalidGrant = errors.New("invalid grant type in context")
)

type ginMiddlewareConfig struct {
	errorHandler   func(*gin.Context, error)
	grantKey       string
	tokenExtractor agentauth.TokenExtractor
}

// NewGinMiddleware creates a Gin middleware that verifies the presented
// grant against the per-request verification context built by
// contextFunc. The verifier must be thread-safe; *grant.Verifier is.
func NewGinMiddleware(verifier core.Verifier, contextFunc agentauth.VerificationContextFunc, opts ...Option) (gin.HandlerFunc, error) {
	config := &ginMiddlewareConfig{
		errorHandler: defaultGinErrorHandler,
		grantKey:     DefaultGrantKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	middlewareOpts := []agentauth.Option{
		agentauth.WithVerifier(verifier),
		agentauth.WithVerificationContext(contextFunc),
		agentauth.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			c, exists := r.Context().Value(gin.ContextKey).(*gin.Context)
			if !exists || c == nil {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
			config.errorHandler(c, err)
		}),
	}

	if config.tokenExtractor != nil {
		middlewareOpts = append(middlewareOpts, agentauth.WithTokenExtractor(config.tokenExtractor))
	}

	middleware, err := agentauth.New(middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		// Make the gin context reachable from the error handler,
		// which only sees the underlying http.Request.
		c.Request = c.Request.Clone(context.WithValue(c.Request.Context(), gin.ContextKey, c))

		encounteredError := true
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			encounteredError = false
			c.Request = r

			if g, err := core.GetGrant(r.Context()); err == nil {
				c.Set(config.grantKey, g)
			}

			c.Next()
		}

		middleware.CheckGrant(handler).ServeHTTP(c.Writer, c.Request)

		if encounteredError {
			c.Abort()
		}
	}, nil
}

func defaultGinErrorHandler(c *gin.Context, err error) {
	status := http.StatusUnauthorized

	var rejErr *core.RejectionError
	if errors.As(err, &rejErr) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Authorization rejected.",
			"reason":  rejErr.Rejection.Reason(),
		})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
	})
}

// GetGrant extracts the verified grant from the Gin context.
func GetGrant(c *gin.Context, grantKey string) (*grant.Grant, error) {
	if grantKey == "" {
		grantKey = DefaultGrantKey
	}
	value, exists := c.Get(grantKey)
	if !exists {
		return nil, ErrMissingGrant
	}

	g, ok := value.(*grant.Grant)
	if !ok {
		return nil, ErrInvalidGrant
	}

	return g, nil
}
