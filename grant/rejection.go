package grant

import (
	"fmt"
	"strconv"
)

// RejectionKind is the closed taxonomy of verification failures. Test
// and branch on the kind; Reason renders the human-readable string at
// the presentation boundary.
type RejectionKind int

const (
	// KindInvalidSignature covers every structural or cryptographic
	// failure: corrupt encoding, an unexpected signing algorithm, a
	// signature mismatch, or an unreadable claim set. They are
	// deliberately not distinguished in the reported reason.
	KindInvalidSignature RejectionKind = iota + 1

	// KindExpired means the current time has reached the grant's
	// expiry.
	KindExpired

	// KindAgentMismatch means the presenting agent is not the agent
	// the grant was issued to.
	KindAgentMismatch

	// KindScopeDenied means the required scope is not among the
	// grant's scopes.
	KindScopeDenied

	// KindLimitExceeded means the requested amount is above the
	// grant's spending limit.
	KindLimitExceeded
)

// String returns a machine-readable code for the kind, suitable for
// metrics labels and log fields.
func (k RejectionKind) String() string {
	switch k {
	case KindInvalidSignature:
		return "invalid_signature"
	case KindExpired:
		return "expired"
	case KindAgentMismatch:
		return "agent_mismatch"
	case KindScopeDenied:
		return "scope_denied"
	case KindLimitExceeded:
		return "limit_exceeded"
	default:
		return "unknown"
	}
}

// Rejection describes why a verification call failed. Only the fields
// relevant to the kind are populated.
type Rejection struct {
	Kind RejectionKind

	// RequestingAgent and BoundAgent are set for KindAgentMismatch.
	RequestingAgent string
	BoundAgent      string

	// Scope is set for KindScopeDenied.
	Scope string

	// Amount and Limit are set for KindLimitExceeded.
	Amount float64
	Limit  float64
}

// Reason renders the human-readable rejection reason.
func (r *Rejection) Reason() string {
	switch r.Kind {
	case KindInvalidSignature:
		return "Invalid token signature"
	case KindExpired:
		return "Token has expired"
	case KindAgentMismatch:
		return fmt.Sprintf("Agent '%s' cannot use token issued to '%s'", r.RequestingAgent, r.BoundAgent)
	case KindScopeDenied:
		return fmt.Sprintf("Scope '%s' not authorized", r.Scope)
	case KindLimitExceeded:
		return fmt.Sprintf("Amount $%s exceeds limit of $%s", formatAmount(r.Amount), formatAmount(r.Limit))
	default:
		return "Authorization rejected"
	}
}

// formatAmount renders a monetary amount without a fixed number of
// decimals: 20 stays "20", 20.5 stays "20.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
