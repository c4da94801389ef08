package agentauthgin

import (
	"github.com/gin-gonic/gin"

	agentauth "github.com/agentauth/go-agentauth"
)

// Option defines a functional option for configuring the middleware.
type Option func(*ginMiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware.
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(config *ginMiddlewareConfig) {
		config.errorHandler = handler
	}
}

// WithGrantKey sets the gin context key the verified grant is stored
// under.
func WithGrantKey(key string) Option {
	return func(config *ginMiddlewareConfig) {
		config.grantKey = key
	}
}

// WithTokenExtractor sets a custom token extractor.
func WithTokenExtractor(extractor agentauth.TokenExtractor) Option {
	return func(config *ginMiddlewareConfig) {
		config.tokenExtractor = extractor
	}
}
