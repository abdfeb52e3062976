package service

import (
	"context"
	"testing"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newInvitationService(t *testing.T) (*InvitationService, *fakeProvider, store.Store, domain.Identity) {
	t.Helper()

	st := newTestStore(t)
	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	admin := seedUser(t, st, tenant.ID, "admin@acme.test", domain.RoleAdmin)

	provider := &fakeProvider{}
	svc := &InvitationService{
		Store:       st,
		Provider:    provider,
		FrontendURL: "https://app.example.com",
	}
	return svc, provider, st, identityFor(admin)
}

func seedInvitation(t *testing.T, st store.Store, tenantID, email, invitedBy, status string, createdAt, expiresAt time.Time) domain.Invitation {
	t.Helper()

	inv := domain.Invitation{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		Email:       email,
		Role:        domain.RoleAgent,
		InvitedByID: invitedBy,
		Status:      status,
		ExpiresAt:   expiresAt,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), inv))
	return inv
}

func TestInviteCreatesPendingAndDelivers(t *testing.T) {
	svc, provider, _, admin := newInvitationService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, admin, "New.Agent@Example.COM", domain.RoleAgent)
	require.NoError(t, err)

	// Email is stored lowercased.
	require.Equal(t, "new.agent@example.com", inv.Email)
	require.Equal(t, domain.InvitationPending, inv.Status)
	require.Equal(t, admin.TenantID, inv.TenantID)
	require.WithinDuration(t, time.Now().Add(inviteTTL), inv.ExpiresAt, time.Minute)

	sent := provider.sentInvites()
	require.Len(t, sent, 1)
	require.Equal(t, "new.agent@example.com", sent[0].Email)
	require.Equal(t, "https://app.example.com/auth/callback?next=/accept-invite", sent[0].RedirectTo)
	require.Equal(t, inv.ID, sent[0].Data["invitation_id"])
	require.Equal(t, admin.TenantID, sent[0].Data["tenant_id"])
	require.Equal(t, domain.RoleAgent, sent[0].Data["user_role"])
}

func TestInviteValidatesInput(t *testing.T) {
	svc, _, _, admin := newInvitationService(t)
	ctx := context.Background()

	_, err := svc.Invite(ctx, admin, "not-an-email", domain.RoleAgent)
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Invite(ctx, admin, "ok@example.com", "superuser")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestInviteEnforcesCap(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	_, err := svc.Invite(ctx, admin, "one@example.com", domain.RoleAgent)
	require.NoError(t, err)
	_, err = svc.Invite(ctx, admin, "two@example.com", domain.RoleAgent)
	require.NoError(t, err)

	_, err = svc.Invite(ctx, admin, "three@example.com", domain.RoleAgent)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// The rejected invite must not leave a row behind.
	count, err := st.Invitations().CountActiveByTenant(ctx, admin.TenantID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestInviteAcceptedSeatsStillCount(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, admin, "one@example.com", domain.RoleAgent)
	require.NoError(t, err)
	require.NoError(t, st.Invitations().UpdateStatus(ctx, inv.ID, domain.InvitationAccepted))

	_, err = svc.Invite(ctx, admin, "two@example.com", domain.RoleAgent)
	require.NoError(t, err)

	// One accepted plus one pending exhausts the cap.
	_, err = svc.Invite(ctx, admin, "three@example.com", domain.RoleAgent)
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestInviteRejectsDuplicatePending(t *testing.T) {
	svc, _, _, admin := newInvitationService(t)
	ctx := context.Background()

	_, err := svc.Invite(ctx, admin, "dup@example.com", domain.RoleAgent)
	require.NoError(t, err)

	// Case differences collapse onto the same stored email.
	_, err = svc.Invite(ctx, admin, "DUP@example.com", domain.RoleAgent)
	require.ErrorIs(t, err, ErrDuplicatePending)
}

func TestInviteRejectsStalePendingDuplicate(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	// A pending row past its expiry still blocks a fresh invite for the
	// same email; the admin clears it with Revoke or Resend.
	past := time.Now().UTC().Add(-30 * 24 * time.Hour)
	seedInvitation(t, st, admin.TenantID, "stale@example.com", admin.ID,
		domain.InvitationPending, past, past.Add(inviteTTL))

	_, err := svc.Invite(ctx, admin, "stale@example.com", domain.RoleAgent)
	require.ErrorIs(t, err, ErrDuplicatePending)
}

func TestInviteCompensatesOnDeliveryFailure(t *testing.T) {
	svc, provider, _, admin := newInvitationService(t)
	ctx := context.Background()

	provider.inviteErr = context.DeadlineExceeded
	_, err := svc.Invite(ctx, admin, "ghost@example.com", domain.RoleAgent)
	require.ErrorIs(t, err, ErrDeliveryFailed)

	// The failed invite must not appear in the listing nor occupy a seat.
	items, err := svc.List(ctx, admin.TenantID)
	require.NoError(t, err)
	require.Empty(t, items)

	provider.inviteErr = nil
	_, err = svc.Invite(ctx, admin, "ghost@example.com", domain.RoleAgent)
	require.NoError(t, err)
}

func TestListReportsExpiredAtReadTime(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-48 * time.Hour)
	inv := seedInvitation(t, st, admin.TenantID, "old@example.com", admin.ID,
		domain.InvitationPending, past, past.Add(24*time.Hour))

	items, err := svc.List(ctx, admin.TenantID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, domain.InvitationExpired, items[0].Status)

	// The stored status is untouched.
	stored, err := st.Invitations().GetInvitationByID(ctx, admin.TenantID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, stored.Status)
}

func TestRevoke(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	t.Run("revokes a pending invitation", func(t *testing.T) {
		inv, err := svc.Invite(ctx, admin, "pending@example.com", domain.RoleAgent)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, admin.TenantID, inv.ID))

		stored, err := st.Invitations().GetInvitationByID(ctx, admin.TenantID, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationRevoked, stored.Status)
	})

	t.Run("rejects revoking an accepted invitation", func(t *testing.T) {
		now := time.Now().UTC()
		inv := seedInvitation(t, st, admin.TenantID, "joined@example.com", admin.ID,
			domain.InvitationAccepted, now, now.Add(inviteTTL))

		require.ErrorIs(t, svc.Revoke(ctx, admin.TenantID, inv.ID), ErrInvalidState)
	})

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, svc.Revoke(ctx, admin.TenantID, "nope"), ErrInvitationNotFound)
	})
}

func TestResend(t *testing.T) {
	svc, provider, st, admin := newInvitationService(t)
	ctx := context.Background()

	t.Run("refreshes an expired invitation", func(t *testing.T) {
		past := time.Now().UTC().Add(-10 * 24 * time.Hour)
		inv := seedInvitation(t, st, admin.TenantID, "stale@example.com", admin.ID,
			domain.InvitationPending, past, past.Add(inviteTTL))

		refreshed, err := svc.Resend(ctx, admin.TenantID, inv.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, refreshed.Status)
		require.WithinDuration(t, time.Now().Add(inviteTTL), refreshed.ExpiresAt, time.Minute)

		sent := provider.sentInvites()
		require.NotEmpty(t, sent)
		require.Equal(t, "stale@example.com", sent[len(sent)-1].Email)
	})

	t.Run("rejects resending a revoked invitation", func(t *testing.T) {
		now := time.Now().UTC()
		inv := seedInvitation(t, st, admin.TenantID, "gone@example.com", admin.ID,
			domain.InvitationRevoked, now, now.Add(inviteTTL))

		_, err := svc.Resend(ctx, admin.TenantID, inv.ID)
		require.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestAcceptMatchesNewestPendingAcrossTenants(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	other := seedTenant(t, st, "Beacon Brokers", "beacon")
	otherAdmin := seedUser(t, st, other.ID, "admin@beacon.test", domain.RoleAdmin)

	now := time.Now().UTC()
	older := seedInvitation(t, st, admin.TenantID, "star@example.com", admin.ID,
		domain.InvitationPending, now.Add(-time.Hour), now.Add(inviteTTL))
	newer := seedInvitation(t, st, other.ID, "star@example.com", otherAdmin.ID,
		domain.InvitationPending, now, now.Add(inviteTTL))

	accepted, ok, err := svc.Accept(ctx, "provider-user-9", "Star@Example.com", "Star", "Agent")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, newer.ID, accepted.ID)
	require.Equal(t, other.ID, accepted.TenantID)

	// A member record now exists under the newer invitation's tenant.
	u, err := st.Users().GetUserByID(ctx, "provider-user-9")
	require.NoError(t, err)
	require.Equal(t, other.ID, u.TenantID)
	require.Equal(t, domain.RoleAgent, u.Role)

	// The older invitation is untouched.
	stored, err := st.Invitations().GetInvitationByID(ctx, admin.TenantID, older.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, stored.Status)
}

func TestAcceptRejectsExpiredInvitation(t *testing.T) {
	svc, _, st, admin := newInvitationService(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-30 * 24 * time.Hour)
	seedInvitation(t, st, admin.TenantID, "late@example.com", admin.ID,
		domain.InvitationPending, past, past.Add(inviteTTL))

	_, _, err := svc.Accept(ctx, "provider-user-1", "late@example.com", "", "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAcceptWithoutInvitationIsNoOp(t *testing.T) {
	svc, _, st, _ := newInvitationService(t)
	ctx := context.Background()

	_, ok, err := svc.Accept(ctx, "provider-user-1", "nobody@example.com", "", "")
	require.NoError(t, err)
	require.False(t, ok)

	// No member record is created for an uninvited signup.
	_, err = st.Users().GetUserByID(ctx, "provider-user-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
