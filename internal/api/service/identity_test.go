package service

import (
	"context"
	"testing"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/pkg/authx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, tenantID, role string) string {
	t.Helper()

	claims := authx.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: tenantID,
		UserRole: role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestResolveRejectsMissingToken(t *testing.T) {
	svc := &IdentityService{Provider: &fakeProvider{}, Store: newTestStore(t)}

	_, err := svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.Resolve(context.Background(), "Basic abc123")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestResolveRejectsInvalidToken(t *testing.T) {
	provider := &fakeProvider{verifyErr: authx.ErrInvalidToken}
	svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

	_, err := svc.Resolve(context.Background(), "Bearer bad-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolvePayloadClaimsWin(t *testing.T) {
	// The signed payload carries one tenant, the metadata another. The
	// payload must win.
	provider := &fakeProvider{user: authx.User{
		ID:    "user-1",
		Email: "agent@example.com",
		Metadata: map[string]any{
			"tenant_id": "tenant-from-metadata",
			"user_role": "admin",
		},
	}}
	svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

	token := signedToken(t, "tenant-from-payload", "agent")
	id, err := svc.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, "tenant-from-payload", id.TenantID)
	require.Equal(t, "agent", id.Role)
}

func TestResolveFallsBackToMetadata(t *testing.T) {
	provider := &fakeProvider{user: authx.User{
		ID:    "user-1",
		Email: "agent@example.com",
		Metadata: map[string]any{
			"tenant_id": "tenant-md",
			"user_role": "agent",
		},
	}}
	svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

	// No custom claims in the payload.
	token := signedToken(t, "", "")
	id, err := svc.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, "tenant-md", id.TenantID)
	require.Equal(t, "agent", id.Role)

	t.Run("legacy role key", func(t *testing.T) {
		provider := &fakeProvider{user: authx.User{
			ID:    "user-2",
			Email: "legacy@example.com",
			Metadata: map[string]any{
				"tenant_id": "tenant-md",
				"role":      "agent",
			},
		}}
		svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

		id, err := svc.Resolve(context.Background(), "Bearer "+signedToken(t, "", ""))
		require.NoError(t, err)
		require.Equal(t, "agent", id.Role)
	})
}

func TestResolveFallsBackToUserRecord(t *testing.T) {
	st := newTestStore(t)
	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	u := seedUser(t, st, tenant.ID, "member@example.com", domain.RoleAgent)

	provider := &fakeProvider{user: authx.User{
		ID:    u.ID,
		Email: u.Email,
	}}
	svc := &IdentityService{Provider: provider, Store: st}

	token := signedToken(t, "", "")
	id, err := svc.Resolve(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, tenant.ID, id.TenantID)
	require.Equal(t, domain.RoleAgent, id.Role)
}

func TestResolveRoleHeuristic(t *testing.T) {
	t.Run("invited users default to agent", func(t *testing.T) {
		provider := &fakeProvider{user: authx.User{
			ID:    "user-invited",
			Email: "invited@example.com",
			Metadata: map[string]any{
				"invitation_id": "some-invitation",
			},
		}}
		svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

		id, err := svc.Resolve(context.Background(), "Bearer "+signedToken(t, "", ""))
		require.NoError(t, err)
		require.Equal(t, domain.RoleAgent, id.Role)
	})

	t.Run("self-signed-up users default to admin", func(t *testing.T) {
		provider := &fakeProvider{user: authx.User{
			ID:    "user-founder",
			Email: "founder@example.com",
		}}
		svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

		id, err := svc.Resolve(context.Background(), "Bearer "+signedToken(t, "", ""))
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, id.Role)
	})
}

func TestResolveMalformedTokenStillResolves(t *testing.T) {
	// The provider accepted the token, so a payload we cannot decode
	// locally only means the payload source contributes nothing.
	provider := &fakeProvider{user: authx.User{
		ID:    "user-1",
		Email: "agent@example.com",
		Metadata: map[string]any{
			"tenant_id": "tenant-md",
			"user_role": "agent",
		},
	}}
	svc := &IdentityService{Provider: provider, Store: newTestStore(t)}

	id, err := svc.Resolve(context.Background(), "Bearer not-a-jwt")
	require.NoError(t, err)
	require.Equal(t, "tenant-md", id.TenantID)
	require.Equal(t, "agent", id.Role)
}
