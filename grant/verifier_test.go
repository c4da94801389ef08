package grant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTestGrant(t *testing.T, issuedAt time.Time) string {
	t.Helper()

	issuer, err := NewIssuer(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := issuer.Issue(Request{
		Principal: "user_123",
		Agent:     "agent_shopping",
		Scope:     []string{"cloud_purchase"},
		Limit:     50,
		Currency:  "USD",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	return token
}

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()

	verifier, err := NewVerifier(testSecret, WithVerifierClock(fixedClock(now)))
	require.NoError(t, err)
	return verifier
}

func TestVerifier_Verify(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	token := issueTestGrant(t, issuedAt)

	testCases := []struct {
		name         string
		now          time.Time
		vctx         VerificationContext
		expectedKind RejectionKind
	}{
		{
			name: "it accepts a grant that passes every check",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope:   "cloud_purchase",
				Amount:          20,
				RequestingAgent: "agent_shopping",
			},
		},
		{
			name: "it skips the agent-binding check when no requesting agent is given",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        20,
			},
		},
		{
			name: "it rejects a grant presented by a different agent",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope:   "cloud_purchase",
				Amount:          20,
				RequestingAgent: "agent_analytics",
			},
			expectedKind: KindAgentMismatch,
		},
		{
			name: "it rejects a scope the grant does not carry",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope: "email_send",
				Amount:        20,
			},
			expectedKind: KindScopeDenied,
		},
		{
			name: "it accepts an amount equal to the limit",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        50,
			},
		},
		{
			name: "it rejects an amount just above the limit",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        50.01,
			},
			expectedKind: KindLimitExceeded,
		},
		{
			name: "it accepts a grant one second before expiry",
			now:  issuedAt.Add(time.Hour - time.Second),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        20,
			},
		},
		{
			name: "it rejects a grant exactly at expiry",
			now:  issuedAt.Add(time.Hour),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        20,
			},
			expectedKind: KindExpired,
		},
		{
			name: "it rejects a grant after expiry",
			now:  issuedAt.Add(time.Hour + time.Second),
			vctx: VerificationContext{
				RequiredScope: "cloud_purchase",
				Amount:        20,
			},
			expectedKind: KindExpired,
		},
		{
			name: "agent mismatch wins over scope and limit failures",
			now:  issuedAt.Add(time.Minute),
			vctx: VerificationContext{
				RequiredScope:   "email_send",
				Amount:          5000,
				RequestingAgent: "agent_analytics",
			},
			expectedKind: KindAgentMismatch,
		},
		{
			name: "expiry wins over the agent-binding check",
			now:  issuedAt.Add(2 * time.Hour),
			vctx: VerificationContext{
				RequiredScope:   "cloud_purchase",
				Amount:          20,
				RequestingAgent: "agent_analytics",
			},
			expectedKind: KindExpired,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			verifier := newTestVerifier(t, testCase.now)

			outcome := verifier.Verify(context.Background(), token, testCase.vctx)

			if testCase.expectedKind == 0 {
				require.True(t, outcome.Valid, "expected a valid outcome, got %v", outcome.Rejection)
				require.NotNil(t, outcome.Grant)
				assert.Equal(t, "user_123", outcome.Grant.Principal)
				assert.Equal(t, "agent_shopping", outcome.Grant.Agent)
			} else {
				require.False(t, outcome.Valid)
				require.NotNil(t, outcome.Rejection)
				assert.Equal(t, testCase.expectedKind, outcome.Rejection.Kind)
				assert.Nil(t, outcome.Grant)
			}
		})
	}
}

func TestVerifier_Verify_Signature(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	token := issueTestGrant(t, issuedAt)
	verifier := newTestVerifier(t, issuedAt.Add(time.Minute))
	vctx := VerificationContext{RequiredScope: "cloud_purchase", Amount: 20}

	t.Run("it rejects a corrupt signature segment", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		sig, err := base64.RawURLEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		sig[0] ^= 0x01
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(sig)

		outcome := verifier.Verify(context.Background(), tampered, vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})

	t.Run("it rejects a modified payload under the original signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)

		var claims map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &claims))
		claims["limit"] = 5000
		claims["scope"] = []string{"cloud_purchase", "email_send"}

		raised, err := json.Marshal(claims)
		require.NoError(t, err)
		tampered := parts[0] + "." + base64.RawURLEncoding.EncodeToString(raised) + "." + parts[2]

		outcome := verifier.Verify(context.Background(), tampered, vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})

	t.Run("it rejects a token declaring an unexpected algorithm", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		unsigned := header + "." + parts[1] + "."

		outcome := verifier.Verify(context.Background(), unsigned, vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})

	t.Run("it rejects garbage", func(t *testing.T) {
		outcome := verifier.Verify(context.Background(), "not-a-token", vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})

	t.Run("it rejects a token signed with a different secret", func(t *testing.T) {
		otherIssuer, err := NewIssuer([]byte("some-other-secret-entirely-here"), WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		foreign, err := otherIssuer.Issue(Request{
			Principal: "user_123",
			Agent:     "agent_shopping",
			Scope:     []string{"cloud_purchase"},
			Limit:     50,
			Currency:  "USD",
			Duration:  time.Hour,
		})
		require.NoError(t, err)

		outcome := verifier.Verify(context.Background(), foreign, vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})

	t.Run("it rejects a grant naming a different issuer", func(t *testing.T) {
		otherIssuer, err := NewIssuer(testSecret,
			WithClock(fixedClock(issuedAt)),
			WithIssuerName("SomeoneElse"),
		)
		require.NoError(t, err)

		foreign, err := otherIssuer.Issue(Request{
			Principal: "user_123",
			Agent:     "agent_shopping",
			Scope:     []string{"cloud_purchase"},
			Limit:     50,
			Currency:  "USD",
			Duration:  time.Hour,
		})
		require.NoError(t, err)

		outcome := verifier.Verify(context.Background(), foreign, vctx)

		require.False(t, outcome.Valid)
		assert.Equal(t, KindInvalidSignature, outcome.Rejection.Kind)
	})
}

func TestVerifier_Verify_EndToEnd(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer, err := NewIssuer(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := issuer.Issue(Request{
		Principal: "user_123",
		Agent:     "agent_shopping",
		Scope:     []string{"cloud_purchase"},
		Limit:     50,
		Currency:  "USD",
		Duration:  60 * time.Minute,
	})
	require.NoError(t, err)

	verifier := newTestVerifier(t, issuedAt.Add(10*time.Minute))

	outcome := verifier.Verify(context.Background(), token, VerificationContext{
		RequiredScope: "cloud_purchase",
		Amount:        20,
	})
	require.True(t, outcome.Valid)
	assert.Equal(t, "user_123", outcome.Grant.Principal)

	stolen := verifier.Verify(context.Background(), token, VerificationContext{
		RequiredScope:   "cloud_purchase",
		Amount:          20,
		RequestingAgent: "agent_analytics",
	})
	require.False(t, stolen.Valid)
	assert.Equal(t, KindAgentMismatch, stolen.Rejection.Kind)
	assert.Equal(t,
		"Agent 'agent_analytics' cannot use token issued to 'agent_shopping'",
		stolen.Rejection.Reason(),
	)
}

func TestRejection_Reason(t *testing.T) {
	testCases := []struct {
		name      string
		rejection *Rejection
		expected  string
	}{
		{
			name:      "invalid signature",
			rejection: &Rejection{Kind: KindInvalidSignature},
			expected:  "Invalid token signature",
		},
		{
			name:      "expired",
			rejection: &Rejection{Kind: KindExpired},
			expected:  "Token has expired",
		},
		{
			name: "agent mismatch",
			rejection: &Rejection{
				Kind:            KindAgentMismatch,
				RequestingAgent: "agent_analytics",
				BoundAgent:      "agent_shopping",
			},
			expected: "Agent 'agent_analytics' cannot use token issued to 'agent_shopping'",
		},
		{
			name:      "scope denied",
			rejection: &Rejection{Kind: KindScopeDenied, Scope: "email_send"},
			expected:  "Scope 'email_send' not authorized",
		},
		{
			name:      "limit exceeded with whole amounts",
			rejection: &Rejection{Kind: KindLimitExceeded, Amount: 100, Limit: 50},
			expected:  "Amount $100 exceeds limit of $50",
		},
		{
			name:      "limit exceeded with fractional amounts",
			rejection: &Rejection{Kind: KindLimitExceeded, Amount: 50.01, Limit: 50},
			expected:  "Amount $50.01 exceeds limit of $50",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.rejection.Reason())
		})
	}
}

func TestRejectionKind_String(t *testing.T) {
	assert.Equal(t, "invalid_signature", KindInvalidSignature.String())
	assert.Equal(t, "expired", KindExpired.String())
	assert.Equal(t, "agent_mismatch", KindAgentMismatch.String())
	assert.Equal(t, "scope_denied", KindScopeDenied.String())
	assert.Equal(t, "limit_exceeded", KindLimitExceeded.String())
}
