// Package authreq models the structured authorization request produced
// by an external authoring component (a UI form, or a natural-language
// translator) and applies the caller-side defaults before the request
// reaches the grant issuer.
//
// The defaulting deliberately lives here and not in the issuer: the
// issuer validates strictly and never silently fills in fields, while
// translators routinely omit them.
package authreq

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentauth/go-agentauth/grant"
)

// ErrMissingField is wrapped by every Validate failure.
var ErrMissingField = errors.New("missing required field")

// Defaults applied by Normalize.
const (
	DefaultScope           = "general"
	DefaultCurrency        = "USD"
	DefaultDurationMinutes = 60
)

// Request is the structured authorization request as produced by the
// authoring component. Limit is a pointer because "no limit mentioned"
// is meaningful: it stays absent through normalization and the caller
// decides what no spending authorization means.
type Request struct {
	Principal       string   `json:"principal"`
	Agent           string   `json:"agent"`
	Scope           []string `json:"scope"`
	Limit           *float64 `json:"limit"`
	Currency        string   `json:"currency"`
	DurationMinutes float64  `json:"durationMinutes"`
}

// Validate checks that every field is present, for boundaries that
// require the caller to spell out the full authorization instead of
// relying on defaults. Use Normalize instead when omitted fields
// should be filled in.
func (r Request) Validate() error {
	switch {
	case r.Principal == "":
		return fmt.Errorf("%w: principal", ErrMissingField)
	case r.Agent == "":
		return fmt.Errorf("%w: agent", ErrMissingField)
	case len(r.Scope) == 0:
		return fmt.Errorf("%w: scope", ErrMissingField)
	case r.Limit == nil:
		return fmt.Errorf("%w: limit", ErrMissingField)
	case r.Currency == "":
		return fmt.Errorf("%w: currency", ErrMissingField)
	case r.DurationMinutes == 0:
		return fmt.Errorf("%w: durationMinutes", ErrMissingField)
	}
	return nil
}

// Normalize fills in the defaults for fields a translator may omit:
// scope, currency and duration. A missing agent gets a generated
// placeholder identity. The limit is left untouched.
func Normalize(req Request, now func() time.Time) Request {
	if req.Agent == "" {
		if now == nil {
			now = time.Now
		}
		req.Agent = fmt.Sprintf("agent_%d", now().UnixMilli())
	}
	if len(req.Scope) == 0 {
		req.Scope = []string{DefaultScope}
	}
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = DefaultDurationMinutes
	}
	return req
}

// Grant converts a normalized request into the issuer's input. It does
// not decide what a missing limit means; callers that require spending
// authority check Limit before calling this and pass their own policy
// otherwise.
func (r Request) Grant() grant.Request {
	var limit float64
	if r.Limit != nil {
		limit = *r.Limit
	}
	return grant.Request{
		Principal: r.Principal,
		Agent:     r.Agent,
		Scope:     r.Scope,
		Limit:     limit,
		Currency:  r.Currency,
		Duration:  time.Duration(r.DurationMinutes * float64(time.Minute)),
	}
}
