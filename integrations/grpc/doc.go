/*
Package grpc provides gRPC interceptors for verifying AgentAuth grants.

The interceptor extracts a bearer token and the per-request
verification context from incoming metadata, verifies the grant, and
makes the recovered claim set available in the handler context.

	interceptor, err := agentauthgrpc.New(
	    agentauthgrpc.WithVerifier(verifier),
	)
	if err != nil {
	    log.Fatal(err)
	}

	server := grpc.NewServer(
	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
	)

Clients send the token in the "authorization" metadata key as
"Bearer <token>" and the verification context in the
"agentauth-scope", "agentauth-amount" and "agentauth-agent" keys.
*/
package grpc
