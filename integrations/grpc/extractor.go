package grpc

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/agentauth/go-agentauth/grant"
)

// TokenExtractor extracts grant tokens from gRPC metadata.
type TokenExtractor func(ctx context.Context) (string, error)

// VerificationContextFunc builds the per-request verification context
// for a gRPC call.
type VerificationContextFunc func(ctx context.Context, fullMethod string) (grant.VerificationContext, error)

// Metadata keys for the verification context.
const (
	ScopeMetadataKey  = "agentauth-scope"
	AmountMetadataKey = "agentauth-amount"
	AgentMetadataKey  = "agentauth-agent"
)

// Extractor errors
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata
	// entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format
	// is invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <token>")

	// ErrUnsupportedScheme indicates an unsupported authorization
	// scheme was used.
	ErrUnsupportedScheme = errors.New("unsupported authorization scheme, expected: Bearer")

	// ErrInvalidAmount indicates the amount metadata entry is not a
	// number.
	ErrInvalidAmount = errors.New("agentauth-amount metadata entry must be a number")
)

// MetadataTokenExtractor extracts the grant token from the
// "authorization" metadata key. It supports the "Bearer <token>"
// format (standard for gRPC).
//
// gRPC normalizes incoming metadata keys to lowercase, so this
// extractor only checks the lowercase "authorization" key.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil // No metadata, no token (not an error)
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil // No auth header (not an error)
	}

	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}

	if strings.ToLower(parts[0]) != "bearer" {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}

// MetadataVerificationContext builds the verification context from the
// agentauth-scope, agentauth-amount and agentauth-agent metadata keys.
func MetadataVerificationContext(ctx context.Context, _ string) (grant.VerificationContext, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return grant.VerificationContext{}, nil
	}

	vctx := grant.VerificationContext{
		RequiredScope:   firstValue(md, ScopeMetadataKey),
		RequestingAgent: firstValue(md, AgentMetadataKey),
	}

	if raw := firstValue(md, AmountMetadataKey); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return grant.VerificationContext{}, ErrInvalidAmount
		}
		vctx.Amount = amount
	}

	return vctx, nil
}

func firstValue(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
