// Package auth resolves the optional caller identity carried by a bearer
// token. Resolution never fails a request on its own; it yields one of three
// outcomes and the endpoint that needs an identity decides what to do.
package auth

import (
	"context"
	"errors"
	"strings"
)

// Outcome is the result kind of resolving a request identity.
type Outcome int

const (
	// Absent means no bearer token was presented.
	Absent Outcome = iota
	// Verified means the token was accepted by the identity provider.
	Verified
	// Rejected means a token was presented but failed verification.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

const bearerPrefix = "Bearer "

// ErrVerifierDisabled is returned by DisabledVerifier.
var ErrVerifierDisabled = errors.New("token verification is not configured")

// Identity is the resolved caller of one request.
type Identity struct {
	Outcome Outcome
	// Email is set only for Verified identities whose token carries an email claim.
	Email string
	// Err is set only for Rejected identities.
	Err error
}

// Requester returns the verified caller email, if any.
func (id Identity) Requester() (string, bool) {
	if id.Outcome != Verified || id.Email == "" {
		return "", false
	}
	return id.Email, true
}

// TokenVerifier checks an ID token and returns the email it was issued for.
// An empty email with a nil error means the token is valid but carries no
// email claim.
type TokenVerifier interface {
	VerifyEmail(ctx context.Context, idToken string) (string, error)
}

// Resolve classifies the Authorization header value and, when it carries a
// bearer token, verifies it.
func Resolve(ctx context.Context, v TokenVerifier, header string) Identity {
	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{Outcome: Absent}
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	email, err := v.VerifyEmail(ctx, token)
	if err != nil {
		return Identity{Outcome: Rejected, Err: err}
	}
	return Identity{Outcome: Verified, Email: email}
}

// DisabledVerifier rejects every token. It stands in when no identity
// provider is configured.
type DisabledVerifier struct{}

// VerifyEmail always fails.
func (DisabledVerifier) VerifyEmail(context.Context, string) (string, error) {
	return "", ErrVerifierDisabled
}
