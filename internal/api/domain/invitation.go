package domain

import "time"

// Invitation lifecycle states. "expired" is a read-time classification:
// the stored status stays pending and List/Resend interpret the expiry.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

// Invitation is a pending seat offer for a tenant. Email is stored
// lowercased so lookups by the signup flow are case-insensitive.
type Invitation struct {
	ID          string
	TenantID    string
	Email       string
	Role        string
	InvitedByID string
	Status      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectiveStatus classifies a pending invitation past its expiry as
// expired without mutating the stored status.
func (i Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// Inviter is the projection of the inviting user attached to listings.
type Inviter struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// InvitationWithInviter pairs an invitation with who sent it.
type InvitationWithInviter struct {
	Invitation
	InvitedBy Inviter
}
