// Package authx is a small client for a GoTrue-compatible identity
// provider. The API service never verifies credentials itself; it hands
// the bearer token to the provider and works with the identity the
// provider returns.
package authx

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken reports a token the provider rejected (malformed,
	// expired, or revoked).
	ErrInvalidToken = errors.New("authx: invalid or expired token")

	// ErrInviteFailed reports that the provider could not deliver an
	// invite email.
	ErrInviteFailed = errors.New("authx: invite delivery failed")
)

// User is the provider's canonical record for a verified token: a stable
// id, a verified email, and the mutable user-metadata blob that signup
// and invite flows write claims into.
type User struct {
	ID       string
	Email    string
	Metadata map[string]any
}

// Provider is the capability surface the API needs from an identity
// provider. Implementations must be safe for concurrent use.
type Provider interface {
	// VerifyToken validates an access token server-side and returns the
	// user it belongs to. Returns ErrInvalidToken when the provider
	// rejects the token.
	VerifyToken(ctx context.Context, token string) (User, error)

	// InviteUserByEmail asks the provider to send an invite email. The
	// data map is stored into the invited user's metadata so the claims
	// chain can recover it after signup. redirectTo is the link the
	// invite email lands on.
	InviteUserByEmail(ctx context.Context, email string, data map[string]any, redirectTo string) error
}

// MetadataString reads a string field out of user metadata, tolerating
// absent keys and non-string values.
func MetadataString(md map[string]any, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

// MetadataHas reports whether user metadata carries a non-nil value for
// key, regardless of its type.
func MetadataHas(md map[string]any, key string) bool {
	if md == nil {
		return false
	}
	v, ok := md[key]
	return ok && v != nil
}
