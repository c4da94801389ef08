package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/agentauth/go-agentauth/core"
)

// Interceptor provides grant verification for gRPC servers.
type Interceptor struct {
	core            *core.Core
	tokenExtractor  TokenExtractor
	contextFunc     VerificationContextFunc
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          core.Logger

	// Temporary fields used during construction
	verifier            core.Verifier
	credentialsOptional bool
}

// New creates a new gRPC interceptor with the provided options.
// WithVerifier is required.
func New(opts ...Option) (*Interceptor, error) {
	interceptor := &Interceptor{
		tokenExtractor:  MetadataTokenExtractor,
		contextFunc:     MetadataVerificationContext,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.verifier == nil {
		return nil, errors.New("verifier is required, use WithVerifier option")
	}

	coreOpts := []core.Option{
		core.WithVerifier(interceptor.verifier),
		core.WithCredentialsOptional(interceptor.credentialsOptional),
	}
	if interceptor.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(interceptor.logger))
	}

	c, err := core.New(coreOpts...)
	if err != nil {
		return nil, err
	}
	interceptor.core = c

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// verifies the presented grant and makes the claim set available in
// the handler context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debugf("skipping grant verification for excluded method %s", info.FullMethod)
			}
			return handler(ctx, req)
		}

		verifiedCtx, err := i.verifyRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(verifiedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// verifies the presented grant and makes the claim set available in
// the stream context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debugf("skipping grant verification for excluded method %s", info.FullMethod)
			}
			return handler(srv, ss)
		}

		verifiedCtx, err := i.verifyRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          verifiedCtx,
		})
	}
}

// verifyRequest extracts and verifies the grant from the context.
func (i *Interceptor) verifyRequest(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Errorf("failed to extract token from gRPC metadata for %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	vctx, err := i.contextFunc(ctx, method)
	if err != nil {
		if i.logger != nil {
			i.logger.Errorf("failed to build verification context for %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	g, err := i.core.CheckGrant(ctx, token, vctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Infof("grant verification failed for %s: %v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	if g != nil {
		ctx = core.SetGrant(ctx, g)
	}

	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the verified grant.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
