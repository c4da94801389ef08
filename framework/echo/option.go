package agentauthecho

import (
	"github.com/labstack/echo/v4"

	agentauth "github.com/agentauth/go-agentauth"
)

// Option defines a functional option for configuring the middleware.
type Option func(*echoMiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware.
func WithErrorHandler(handler func(echo.Context, error)) Option {
	return func(config *echoMiddlewareConfig) {
		config.errorHandler = handler
	}
}

// WithGrantKey sets the echo context key the verified grant is stored
// under.
func WithGrantKey(key string) Option {
	return func(config *echoMiddlewareConfig) {
		config.grantKey = key
	}
}

// WithTokenExtractor sets a custom token extractor.
func WithTokenExtractor(extractor agentauth.TokenExtractor) Option {
	return func(config *echoMiddlewareConfig) {
		config.tokenExtractor = extractor
	}
}
