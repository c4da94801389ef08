package agentauth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agentauth/go-agentauth/core"
)

// Sentinel errors re-exported for boundary code. The middleware's
// underlying engine produces these; compare with errors.Is.
var (
	// ErrTokenMissing is returned when no token was presented.
	ErrTokenMissing = core.ErrTokenMissing

	// ErrGrantRejected matches every policy rejection.
	ErrGrantRejected = core.ErrGrantRejected
)

// ErrorHandler is a handler which is called when an error occurs in
// the Middleware. Among some general errors, this handler determines
// the response when a token is not found or a grant is rejected. The
// err can be checked against ErrTokenMissing and ErrGrantRejected; a
// rejection additionally unwraps (via errors.As) to a
// *core.RejectionError carrying the structured reason. The default
// handler returns 401 for a missing token, 403 with the rejection
// reason for a rejected grant, and 500 for everything else. A policy
// rejection must never surface as an internal fault: it is an expected
// outcome of the protocol.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is the default error handler implementation for
// the Middleware. If an error handler is not provided via the
// WithErrorHandler option this will be used.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	var rejErr *core.RejectionError
	switch {
	case errors.Is(err, core.ErrTokenMissing):
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, rejectionResponse{Message: "Authorization token is missing."})
	case errors.As(err, &rejErr):
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, rejectionResponse{
			Message: "Authorization rejected.",
			Reason:  rejErr.Rejection.Reason(),
		})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, rejectionResponse{Message: "Something went wrong while checking the grant."})
	}
}

type rejectionResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}
