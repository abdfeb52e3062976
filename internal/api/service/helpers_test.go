package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/internal/api/store/drivers/sqlite"
	"github.com/anchorhq/anchor/pkg/authx"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// testMetrics is shared across tests because promauto collectors
// register globally and cannot be registered twice.
var testMetrics = sync.OnceValue(metrics.NewAPIMetrics)

func seedTenant(t *testing.T, st store.Store, name, slug string) domain.Tenant {
	t.Helper()

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:        idx.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), tenant))
	return tenant
}

func seedUser(t *testing.T, st store.Store, tenantID, email, role string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func seedClient(t *testing.T, st store.Store, tenantID, createdBy, firstName, lastName, status string) domain.Client {
	t.Helper()

	now := time.Now().UTC()
	c := domain.Client{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		FirstName:   firstName,
		LastName:    lastName,
		Status:      status,
		CreatedByID: createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), c))
	return c
}

func identityFor(u domain.User) domain.Identity {
	return domain.Identity{
		ID:       u.ID,
		Email:    u.Email,
		TenantID: u.TenantID,
		Role:     u.Role,
	}
}

type inviteCall struct {
	Email      string
	Data       map[string]any
	RedirectTo string
}

// fakeProvider is an in-memory authx.Provider double.
type fakeProvider struct {
	mu sync.Mutex

	user      authx.User
	verifyErr error
	inviteErr error
	invites   []inviteCall
}

func (p *fakeProvider) VerifyToken(ctx context.Context, token string) (authx.User, error) {
	if p.verifyErr != nil {
		return authx.User{}, p.verifyErr
	}
	return p.user, nil
}

func (p *fakeProvider) InviteUserByEmail(ctx context.Context, email string, data map[string]any, redirectTo string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inviteErr != nil {
		return p.inviteErr
	}
	p.invites = append(p.invites, inviteCall{Email: email, Data: data, RedirectTo: redirectTo})
	return nil
}

func (p *fakeProvider) sentInvites() []inviteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]inviteCall(nil), p.invites...)
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

// fakeSender is an in-memory email.Sender double.
type fakeSender struct {
	mu sync.Mutex

	sendErr error
	sent    []sentEmail
}

func (s *fakeSender) Send(ctx context.Context, to, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (s *fakeSender) sentEmails() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEmail(nil), s.sent...)
}
