package store

import (
	"context"
	"errors"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and let
// services depend only on what they touch.
type Store interface {
	Tenants() Tenants
	Users() Users
	Invitations() Invitations
	Clients() Clients
	Policies() Policies
	Events() Events
	Tasks() Tasks

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn
	// returns nil and rolling back otherwise. This is the recommended
	// way to run multi-step operations that must be atomic (e.g. the
	// invitation cap check plus insert).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos and adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tenants interface {
	// GetTenantByID returns a tenant by id.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// CreateTenant inserts a new tenant (id is app-provided ULID).
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// UpdateTenant mutates name/phone/address/province and bumps updated_at.
	UpdateTenant(ctx context.Context, t domain.Tenant) error

	// ListTenants returns all tenants. Used by the digest fan-out.
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
}

type Users interface {
	// GetUserByID returns a user by id. This is the authoritative claim
	// source of last resort for tenant/role resolution.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user (id comes from the identity provider).
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsersByTenant returns a tenant's members, oldest first. Used
	// for digest recipients and inviter projections.
	ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error)
}

type Invitations interface {
	// CreateInvitation writes a new invitation row.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByID returns an invitation scoped to a tenant.
	GetInvitationByID(ctx context.Context, tenantID, id string) (domain.Invitation, error)

	// CountActiveByTenant counts invitations with status in
	// {pending, accepted}. This is the derived seat count the cap is
	// enforced against.
	CountActiveByTenant(ctx context.Context, tenantID string) (int, error)

	// GetPendingByEmail returns the pending invitation for a
	// (tenant, lowercased email) pair, if any.
	GetPendingByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error)

	// GetNewestPendingByEmail returns the newest pending invitation for
	// an email across all tenants. Used by the signup-completion flow.
	GetNewestPendingByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// UpdateStatus transitions an invitation's status and bumps updated_at.
	UpdateStatus(ctx context.Context, id, status string) error

	// Refresh sets a new expiry and forces status back to pending.
	Refresh(ctx context.Context, id string, expiresAt time.Time) error

	// DeleteInvitation removes a row. Only used as compensation when the
	// invite delivery call fails after the row was created.
	DeleteInvitation(ctx context.Context, id string) error

	// ListByTenant returns all invitations for a tenant newest first,
	// each with the inviting user's projection.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.InvitationWithInviter, error)
}

type Clients interface {
	// CreateClient inserts a new client or lead.
	CreateClient(ctx context.Context, c domain.Client) error

	// GetClientByID returns a client scoped to a tenant.
	GetClientByID(ctx context.Context, tenantID, id string) (domain.Client, error)

	// SearchClients returns a filtered, paginated list projection with
	// per-client policy counts and next renewal dates.
	SearchClients(ctx context.Context, tenantID string, q domain.ClientSearch) (domain.ClientPage, error)

	// UpdateClient writes the mutable fields and bumps updated_at.
	UpdateClient(ctx context.Context, c domain.Client) error

	// DeleteClient removes a client. Policies, events and tasks cascade
	// per schema.
	DeleteClient(ctx context.Context, tenantID, id string) error
}

type Policies interface {
	// CreatePolicy inserts a new policy under a client.
	CreatePolicy(ctx context.Context, p domain.Policy) error

	// GetPolicyByID returns a policy scoped to a tenant.
	GetPolicyByID(ctx context.Context, tenantID, id string) (domain.Policy, error)

	// ListPoliciesByClient returns a client's policies newest first.
	ListPoliciesByClient(ctx context.Context, tenantID, clientID string) ([]domain.Policy, error)

	// UpdatePolicy writes the mutable fields and bumps updated_at.
	UpdatePolicy(ctx context.Context, p domain.Policy) error

	// DeletePolicy removes a policy.
	DeletePolicy(ctx context.Context, tenantID, id string) error

	// ListRenewalsDue returns active or pending_renewal policies whose
	// end date falls in [from, to], joined with client names, soonest
	// first. Feeds the digest's renewal milestones.
	ListRenewalsDue(ctx context.Context, tenantID string, from, to time.Time) ([]domain.RenewalDue, error)
}

type Events interface {
	// AddEvent appends a timeline event. Events are immutable.
	AddEvent(ctx context.Context, e domain.Event) error

	// ListEventsByClient returns one page of a client's timeline,
	// newest first.
	ListEventsByClient(ctx context.Context, tenantID, clientID string, page, limit int) (domain.EventPage, error)
}

type Tasks interface {
	// CreateTask inserts a new task.
	CreateTask(ctx context.Context, t domain.Task) error

	// GetTaskByID returns a task scoped to a tenant.
	GetTaskByID(ctx context.Context, tenantID, id string) (domain.Task, error)

	// ListTasksByTenant returns a tenant's tasks, optionally filtered by
	// status, due-date order with open tasks first.
	ListTasksByTenant(ctx context.Context, tenantID, status string) ([]domain.Task, error)

	// CompleteTask marks a task done and bumps updated_at.
	CompleteTask(ctx context.Context, tenantID, id string) error

	// ListOverdueTasks returns open tasks due strictly before the cutoff,
	// joined with client names, most overdue first. Feeds the digest.
	ListOverdueTasks(ctx context.Context, tenantID string, before time.Time) ([]domain.OverdueTask, error)
}
