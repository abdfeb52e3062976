package authx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims TokenClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	t.Run("extracts custom claims from payload", func(t *testing.T) {
		token := signedToken(t, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TenantID: "tenant-1",
			UserRole: "agent",
		})

		claims, ok := DecodeUnverified(token)
		require.True(t, ok)
		require.Equal(t, "tenant-1", claims.TenantID)
		require.Equal(t, "agent", claims.UserRole)
	})

	t.Run("absent custom claims decode as empty", func(t *testing.T) {
		token := signedToken(t, TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		})

		claims, ok := DecodeUnverified(token)
		require.True(t, ok)
		require.Empty(t, claims.TenantID)
		require.Empty(t, claims.UserRole)
	})

	t.Run("malformed token is swallowed", func(t *testing.T) {
		for _, tok := range []string{"", "garbage", "a.b", "a.!!!not-base64!!!.c"} {
			claims, ok := DecodeUnverified(tok)
			require.False(t, ok, "token %q", tok)
			require.Empty(t, claims.TenantID)
		}
	})
}

func TestMetadataHelpers(t *testing.T) {
	t.Parallel()

	md := map[string]any{
		"tenant_id":     "tenant-1",
		"invitation_id": "inv-1",
		"count":         float64(3),
	}

	require.Equal(t, "tenant-1", MetadataString(md, "tenant_id"))
	require.Empty(t, MetadataString(md, "count"))
	require.Empty(t, MetadataString(md, "missing"))
	require.Empty(t, MetadataString(nil, "tenant_id"))

	require.True(t, MetadataHas(md, "invitation_id"))
	require.True(t, MetadataHas(md, "count"))
	require.False(t, MetadataHas(md, "missing"))
	require.False(t, MetadataHas(nil, "invitation_id"))
}
