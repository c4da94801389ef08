package core

import (
	"context"

	"github.com/agentauth/go-agentauth/grant"
)

// contextKey is an unexported type for context keys to prevent
// collisions with other packages.
type contextKey int

const (
	grantKey contextKey = iota
)

// SetGrant stores a verified grant in the context. Transport adapters
// call this after a successful CheckGrant.
func SetGrant(ctx context.Context, g *grant.Grant) context.Context {
	return context.WithValue(ctx, grantKey, g)
}

// GetGrant retrieves the verified grant from the context. It returns
// ErrGrantNotFound when no grant is stored.
func GetGrant(ctx context.Context) (*grant.Grant, error) {
	g, ok := ctx.Value(grantKey).(*grant.Grant)
	if !ok || g == nil {
		return nil, ErrGrantNotFound
	}
	return g, nil
}

// HasGrant checks if a grant exists in the context without retrieving
// it.
func HasGrant(ctx context.Context) bool {
	g, ok := ctx.Value(grantKey).(*grant.Grant)
	return ok && g != nil
}
