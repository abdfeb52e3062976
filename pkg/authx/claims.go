package authx

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the custom fields the provider's access-token hook
// stamps into the signed payload at login time.
type TokenClaims struct {
	jwt.RegisteredClaims

	TenantID string `json:"tenant_id,omitempty"`
	UserRole string `json:"user_role,omitempty"`
}

// DecodeUnverified extracts custom claims from a token's payload without
// verifying its signature. This is only safe because the token has
// already been verified server-side by the provider; we are reading
// fields the provider's own verification endpoint does not echo back.
//
// A malformed token yields ok=false and zero claims, never an error:
// claims sourced this way are optional and the chain falls through to
// the next source.
func DecodeUnverified(token string) (TokenClaims, bool) {
	var claims TokenClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, false
	}

	return claims, true
}
