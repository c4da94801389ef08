package grant

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("agentauth-test-secret-key-0123456789")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewIssuer(t *testing.T) {
	t.Run("it requires a secret", func(t *testing.T) {
		_, err := NewIssuer(nil)
		assert.ErrorIs(t, err, ErrSecretMissing)
	})

	t.Run("it rejects a nil clock", func(t *testing.T) {
		_, err := NewIssuer(testSecret, WithClock(nil))
		assert.ErrorIs(t, err, ErrClockNil)
	})

	t.Run("it rejects an empty issuer name", func(t *testing.T) {
		_, err := NewIssuer(testSecret, WithIssuerName(""))
		assert.ErrorIs(t, err, ErrIssuerEmpty)
	})
}

func TestIssuer_Issue_InvalidInput(t *testing.T) {
	valid := Request{
		Principal: "user_123",
		Agent:     "agent_shopping",
		Scope:     []string{"cloud_purchase"},
		Limit:     50,
		Currency:  "USD",
		Duration:  time.Hour,
	}

	testCases := []struct {
		name   string
		mutate func(*Request)
	}{
		{
			name:   "empty principal",
			mutate: func(r *Request) { r.Principal = "" },
		},
		{
			name:   "empty agent",
			mutate: func(r *Request) { r.Agent = "" },
		},
		{
			name:   "empty scope list",
			mutate: func(r *Request) { r.Scope = nil },
		},
		{
			name:   "empty scope entry",
			mutate: func(r *Request) { r.Scope = []string{"cloud_purchase", ""} },
		},
		{
			name:   "negative limit",
			mutate: func(r *Request) { r.Limit = -1 },
		},
		{
			name:   "non-finite limit",
			mutate: func(r *Request) { r.Limit = nan() },
		},
		{
			name:   "empty currency",
			mutate: func(r *Request) { r.Currency = "" },
		},
	}

	issuer, err := NewIssuer(testSecret)
	require.NoError(t, err)

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := valid
			testCase.mutate(&req)

			_, err := issuer.Issue(req)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestIssuer_Issue_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer, err := NewIssuer(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := issuer.Issue(Request{
		Principal: "user_123",
		Agent:     "agent_shopping",
		Scope:     []string{"cloud_purchase", "reports_view"},
		Limit:     50,
		Currency:  "USD",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	verifier, err := NewVerifier(testSecret, WithVerifierClock(fixedClock(issuedAt.Add(time.Minute))))
	require.NoError(t, err)

	outcome := verifier.Verify(context.Background(), token, VerificationContext{
		RequiredScope:   "cloud_purchase",
		Amount:          50,
		RequestingAgent: "agent_shopping",
	})

	require.True(t, outcome.Valid)
	require.Nil(t, outcome.Rejection)

	want := &Grant{
		Principal: "user_123",
		Agent:     "agent_shopping",
		Scope:     []string{"cloud_purchase", "reports_view"},
		Limit:     50,
		Currency:  "USD",
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
		Issuer:    IssuerName,
	}
	if diff := cmp.Diff(want, outcome.Grant); diff != "" {
		t.Errorf("recovered grant mismatch (-want +got):\n%s", diff)
	}
}

func TestIssuer_Issue_NonPositiveDuration(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("it issues a pre-expired grant by default", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret, WithClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		token, err := issuer.Issue(Request{
			Principal: "user_123",
			Agent:     "agent_shopping",
			Scope:     []string{"cloud_purchase"},
			Limit:     50,
			Currency:  "USD",
			Duration:  -time.Minute,
		})
		require.NoError(t, err)

		verifier, err := NewVerifier(testSecret, WithVerifierClock(fixedClock(issuedAt)))
		require.NoError(t, err)

		outcome := verifier.Verify(context.Background(), token, VerificationContext{
			RequiredScope: "cloud_purchase",
			Amount:        10,
		})

		require.False(t, outcome.Valid)
		assert.Equal(t, KindExpired, outcome.Rejection.Kind)
	})

	t.Run("it errors when configured to reject non-positive durations", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret,
			WithClock(fixedClock(issuedAt)),
			WithRejectNonPositiveDuration(true),
		)
		require.NoError(t, err)

		_, err = issuer.Issue(Request{
			Principal: "user_123",
			Agent:     "agent_shopping",
			Scope:     []string{"cloud_purchase"},
			Limit:     50,
			Currency:  "USD",
			Duration:  0,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDecode(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

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

	g, err := Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "user_123", g.Principal)
	assert.Equal(t, "agent_shopping", g.Agent)
	assert.Equal(t, issuedAt.Add(time.Hour), g.ExpiresAt)

	_, err = Decode("not-a-token")
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
