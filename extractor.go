package agentauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/agentauth/go-agentauth/grant"
)

// TokenExtractor is a function that takes a request as input and
// returns either a token or an error. An error should only be returned
// if an attempt to specify a token was found, but the information was
// somehow incorrectly formed. In the case where a token is simply not
// present, this should not be treated as an error. An empty string
// should be returned in that case.
type TokenExtractor func(r *http.Request) (string, error)

// AuthHeaderTokenExtractor is a TokenExtractor that takes a request
// and extracts the token from the Authorization header.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil // No error, just no token.
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 || strings.ToLower(authHeaderParts[0]) != "bearer" {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	return authHeaderParts[1], nil
}

// CookieTokenExtractor builds a TokenExtractor that takes a request and
// extracts the token from the cookie using the passed in cookieName.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err == http.ErrNoCookie {
			return "", nil // No cookie, then no token, so no error.
		}

		return cookie.Value, nil
	}
}

// ParameterTokenExtractor returns a TokenExtractor that extracts
// the token from the specified query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor returns a TokenExtractor that runs multiple
// TokenExtractors and takes the one that does not return an empty
// token. If a TokenExtractor returns an error that error is
// immediately returned.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
			if err != nil {
				return "", err
			}

			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}

// StaticVerificationContext returns a VerificationContextFunc that uses
// the same verification context for every request. Useful when a route
// gates a single fixed action.
func StaticVerificationContext(vctx grant.VerificationContext) VerificationContextFunc {
	return func(*http.Request) (grant.VerificationContext, error) {
		return vctx, nil
	}
}

// QueryVerificationContext returns a VerificationContextFunc reading
// the scope, amount and requestingAgent query parameters.
func QueryVerificationContext() VerificationContextFunc {
	return func(r *http.Request) (grant.VerificationContext, error) {
		vctx := grant.VerificationContext{
			RequiredScope:   r.URL.Query().Get("scope"),
			RequestingAgent: r.URL.Query().Get("requestingAgent"),
		}

		if raw := r.URL.Query().Get("amount"); raw != "" {
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return grant.VerificationContext{}, errors.New("amount parameter must be a number")
			}
			vctx.Amount = amount
		}

		return vctx, nil
	}
}

// BodyVerificationContext returns a VerificationContextFunc reading the
// scope, amount and requestingAgent fields from a JSON request body.
// The body is restored afterwards so the wrapped handler can read it
// again.
func BodyVerificationContext() VerificationContextFunc {
	return func(r *http.Request) (grant.VerificationContext, error) {
		if r.Body == nil {
			return grant.VerificationContext{}, errors.New("request body is required")
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return grant.VerificationContext{}, err
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))

		var body struct {
			Scope           string  `json:"scope"`
			Amount          float64 `json:"amount"`
			RequestingAgent string  `json:"requestingAgent"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return grant.VerificationContext{}, errors.New("request body must be valid JSON")
		}

		return grant.VerificationContext{
			RequiredScope:   body.Scope,
			Amount:          body.Amount,
			RequestingAgent: body.RequestingAgent,
		}, nil
	}
}
