/*
Package core provides the framework-agnostic relying-party engine for
AgentAuth grants. It can be wrapped by transport-specific adapters
(net/http, gin, echo, gRPC) to gate actions on a verified grant.

The Core type holds the verifier and the credentials policy; the
transport adapter extracts the bearer token and the per-request
verification context and calls CheckGrant. A policy rejection comes
back as a *RejectionError carrying the structured grant.Rejection, so
boundaries can report the specific reason without string matching.

Claims recovered from a verified grant travel in the request context:

	ctx = core.SetGrant(ctx, g)
	g, err := core.GetGrant(ctx)
*/
package core
