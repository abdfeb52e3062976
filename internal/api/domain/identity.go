package domain

// Roles a tenant member can hold. Admins manage the agency (settings,
// invitations); agents work the book of business.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// ValidRole reports whether r is a role this system understands.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleAgent
}

// Identity is the per-request result of token verification plus claims
// resolution. It is derived, never persisted.
//
// ID and Email are always present once the token verified. TenantID and
// Role may be empty (a user mid-onboarding has neither); tenant-scoped
// operations must reject identities without a tenant.
type Identity struct {
	ID       string
	Email    string
	TenantID string
	Role     string
}
