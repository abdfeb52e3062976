package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/authx"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrCapacityExceeded   = errors.New("invitation capacity exceeded")
	ErrDuplicatePending   = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvalidState       = errors.New("invitation is not in a valid state for this operation")
	ErrDeliveryFailed     = errors.New("invite email delivery failed")
)

const (
	// inviteCap bounds seats per tenant: pending plus accepted
	// invitations may never exceed it.
	inviteCap = 2

	// inviteTTL is how long an invitation stays redeemable. Resend
	// grants a fresh window of the same length.
	inviteTTL = 7 * 24 * time.Hour
)

// InvitationService owns the invitation lifecycle: minting seat offers,
// delivering them through the identity provider, and walking them
// through pending, accepted, revoked and expired.
type InvitationService struct {
	Store       store.Store
	Provider    authx.Provider
	FrontendURL string
}

// acceptRedirect is where the provider's invite email lands the invitee.
func (s *InvitationService) acceptRedirect() string {
	return strings.TrimSuffix(s.FrontendURL, "/") + "/auth/callback?next=/accept-invite"
}

// Invite mints an invitation and asks the provider to deliver it. The
// cap and duplicate checks run inside the same transaction as the
// insert so concurrent invites cannot oversubscribe a tenant. If
// delivery fails after the row is committed, the row is deleted again
// so a failed invite never occupies a seat.
func (s *InvitationService) Invite(ctx context.Context, inviter domain.Identity, emailAddr, role string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input. Emails are stored lowercased so the signup
	// flow's lookup is case-insensitive.
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.Invitation{}, ErrInvalidEmail
	}
	if !domain.ValidRole(role) {
		return domain.Invitation{}, ErrInvalidRole
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:          idx.New().String(),
		TenantID:    inviter.TenantID,
		Email:       emailAddr,
		Role:        role,
		InvitedByID: inviter.ID,
		Status:      domain.InvitationPending,
		ExpiresAt:   now.Add(inviteTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 2. Check cap and duplicates, then insert, atomically.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Invitations().CountActiveByTenant(ctx, inviter.TenantID)
		if err != nil {
			return err
		}
		if count >= inviteCap {
			return ErrCapacityExceeded
		}

		// A stored-pending row blocks a new invite even past its expiry;
		// the partial unique index would reject the insert regardless,
		// and the admin's remedy for a stale one is Revoke or Resend.
		_, err = tx.Invitations().GetPendingByEmail(ctx, inviter.TenantID, emailAddr)
		if err == nil {
			return ErrDuplicatePending
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent invite for the same email;
			// the partial unique index caught it.
			return domain.Invitation{}, ErrDuplicatePending
		}
		if errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrDuplicatePending) {
			return domain.Invitation{}, err
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	// 3. Ask the provider to deliver the invite email. The metadata is
	// stored on the invited user so claim resolution can recover the
	// tenant and role after signup.
	err = s.Provider.InviteUserByEmail(ctx, emailAddr, map[string]any{
		"invitation_id": inv.ID,
		"tenant_id":     inv.TenantID,
		"user_role":     inv.Role,
	}, s.acceptRedirect())
	if err != nil {
		log.Warn("invite delivery failed, compensating",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		// 4. Compensate: the seat must not stay occupied by an
		// invitation nobody received.
		if delErr := s.Store.Invitations().DeleteInvitation(ctx, inv.ID); delErr != nil {
			log.Error("failed to delete invitation after delivery failure",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", delErr),
			)
		}
		return domain.Invitation{}, ErrDeliveryFailed
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("tenant_id", inv.TenantID),
		slog.String("role", inv.Role),
	)

	return inv, nil
}

// List returns a tenant's invitations newest first. Pending invitations
// past their expiry are reported as expired without being rewritten.
func (s *InvitationService) List(ctx context.Context, tenantID string) ([]domain.InvitationWithInviter, error) {
	items, err := s.Store.Invitations().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return items, nil
}

// Revoke withdraws a pending invitation. Accepted and revoked
// invitations cannot be revoked (again); an expired-but-stored-pending
// invitation can, which tidies the listing.
func (s *InvitationService) Revoke(ctx context.Context, tenantID, id string) error {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}

	if inv.Status != domain.InvitationPending {
		return ErrInvalidState
	}

	if err := s.Store.Invitations().UpdateStatus(ctx, inv.ID, domain.InvitationRevoked); err != nil {
		log.Error("failed to revoke invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("invitation revoked", slog.String("invitation_id", inv.ID))
	return nil
}

// Resend refreshes a pending or expired invitation with a new expiry
// window and re-delivers the invite email. Unlike Invite, a delivery
// failure here does not roll anything back: the invitation predates
// this call and the refreshed expiry is harmless on its own.
func (s *InvitationService) Resend(ctx context.Context, tenantID, id string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}

	if inv.Status != domain.InvitationPending && inv.Status != domain.InvitationExpired {
		return domain.Invitation{}, ErrInvalidState
	}

	expiresAt := time.Now().UTC().Add(inviteTTL)
	if err := s.Store.Invitations().Refresh(ctx, inv.ID, expiresAt); err != nil {
		log.Error("failed to refresh invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}
	inv.Status = domain.InvitationPending
	inv.ExpiresAt = expiresAt

	err = s.Provider.InviteUserByEmail(ctx, inv.Email, map[string]any{
		"invitation_id": inv.ID,
		"tenant_id":     inv.TenantID,
		"user_role":     inv.Role,
	}, s.acceptRedirect())
	if err != nil {
		log.Warn("invite re-delivery failed",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, ErrDeliveryFailed
	}

	log.Info("invitation resent", slog.String("invitation_id", inv.ID))
	return inv, nil
}

// Accept completes signup for an invited user: the newest pending
// invitation matching their verified email is marked accepted and a
// user record is written with the invitation's tenant and role, both in
// one transaction. Matching is by email across all tenants since the
// invitee had no tenant claim before this moment. A user with no
// pending invitation is not an error; the call reports false and
// changes nothing, since signing up without an invite is a normal path.
func (s *InvitationService) Accept(ctx context.Context, userID, emailAddr, firstName, lastName string) (domain.Invitation, bool, error) {
	log := slogx.FromContext(ctx)

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	inv, err := s.Store.Invitations().GetNewestPendingByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, false, nil
		}
		return domain.Invitation{}, false, err
	}

	now := time.Now().UTC()
	if inv.EffectiveStatus(now) != domain.InvitationPending {
		return domain.Invitation{}, false, ErrInvalidState
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().UpdateStatus(ctx, inv.ID, domain.InvitationAccepted); err != nil {
			return err
		}
		return tx.Users().CreateUser(ctx, domain.User{
			ID:        userID,
			TenantID:  inv.TenantID,
			Email:     emailAddr,
			FirstName: firstName,
			LastName:  lastName,
			Role:      inv.Role,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to accept invitation",
			slog.String("invitation_id", inv.ID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, false, err
	}

	inv.Status = domain.InvitationAccepted
	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", userID),
		slog.String("tenant_id", inv.TenantID),
	)

	return inv, true, nil
}
