/*
Package agentauth provides HTTP middleware for verifying AgentAuth
grants at a relying-party boundary.

An AgentAuth grant is a short-lived, HS256-signed token that delegates
a bounded capability (spending limit, permission scopes, time window,
and an agent identity binding) from a human principal to an autonomous
software agent. The middleware extracts the bearer token and the
per-request verification context, verifies the grant, and makes the
recovered claim set available in the request context. The package
follows the Core-Adapter pattern, with this package serving as the
net/http transport adapter.

# Quick Start

	import (
	    "github.com/agentauth/go-agentauth"
	    "github.com/agentauth/go-agentauth/core"
	    "github.com/agentauth/go-agentauth/grant"
	)

	func main() {
	    verifier, err := grant.NewVerifier([]byte(os.Getenv("AGENTAUTH_SECRET")))
	    if err != nil {
	        log.Fatal(err)
	    }

	    middleware, err := agentauth.New(
	        agentauth.WithVerifier(verifier),
	        agentauth.WithVerificationContext(agentauth.BodyVerificationContext()),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/purchase", middleware.CheckGrant(purchaseHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing the grant

	func purchaseHandler(w http.ResponseWriter, r *http.Request) {
	    g, err := core.GetGrant(r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    // g.Principal and g.Agent form the authorization record.
	}

A policy rejection (expired grant, wrong agent, scope not authorized,
amount over limit, bad signature) is an expected business outcome: the
default error handler answers 403 with the specific reason, never a
5xx.
*/
package agentauth
