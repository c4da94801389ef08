// Package agentauthecho provides an Echo middleware adapter for
// verifying AgentAuth grants.
package agentauthecho

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	agentauth "github.com/agentauth/go-agentauth"
	"github.com/agentauth/go-agentauth/core"
	"github.com/agentauth/go-agentauth/grant"
)

// DefaultGrantKey is the echo context key the verified grant is stored
// under.
const DefaultGrantKey = "agentauth_grant"

// echoContextKey carries the echo.Context through the underlying
// http.Request so the error handler can reach it.
type echoContextKey struct{}

type echoMiddlewareConfig struct {
	errorHandler   func(echo.Context, error)
	grantKey       string
	tokenExtractor agentauth.TokenExtractor
}

// NewEchoMiddleware creates an Echo middleware that verifies the
// presented grant against the per-request verification context built by
// contextFunc.
func NewEchoMiddleware(verifier core.Verifier, contextFunc agentauth.VerificationContextFunc, opts ...Option) (echo.MiddlewareFunc, error) {
	config := &echoMiddlewareConfig{
		errorHandler: defaultEchoErrorHandler,
		grantKey:     DefaultGrantKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	middlewareOpts := []agentauth.Option{
		agentauth.WithVerifier(verifier),
		agentauth.WithVerificationContext(contextFunc),
		agentauth.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			c, ok := r.Context().Value(echoContextKey{}).(echo.Context)
			if !ok {
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

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			request := c.Request()
			c.SetRequest(request.Clone(context.WithValue(request.Context(), echoContextKey{}, c)))

			var handlerErr error
			var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)

				if g, err := core.GetGrant(r.Context()); err == nil {
					c.Set(config.grantKey, g)
				}

				handlerErr = next(c)
			}

			middleware.CheckGrant(handler).ServeHTTP(c.Response(), c.Request())

			return handlerErr
		}
	}, nil
}

func defaultEchoErrorHandler(c echo.Context, err error) {
	var rejErr *core.RejectionError
	if errors.As(err, &rejErr) {
		_ = c.JSON(http.StatusForbidden, map[string]string{
			"message": "Authorization rejected.",
			"reason":  rejErr.Rejection.Reason(),
		})
		return
	}

	_ = c.JSON(http.StatusUnauthorized, map[string]string{
		"message": err.Error(),
	})
}

// GetGrant extracts the verified grant from the Echo context.
func GetGrant(c echo.Context, grantKey string) (*grant.Grant, bool) {
	if grantKey == "" {
		grantKey = DefaultGrantKey
	}

	g, ok := c.Get(grantKey).(*grant.Grant)
	if !ok || g == nil {
		return nil, false
	}
	return g, true
}
