package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newDigestService(t *testing.T) (*DigestService, *fakeSender, store.Store) {
	t.Helper()

	st := newTestStore(t)
	sender := &fakeSender{}
	svc := &DigestService{
		Store:   st,
		Sender:  sender,
		Metrics: testMetrics(),
		Logger:  slog.Default(),
	}
	return svc, sender, st
}

func seedOverdueTask(t *testing.T, st store.Store, tenantID, createdBy, clientID, title string, due time.Time) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, st.Tasks().CreateTask(context.Background(), domain.Task{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		ClientID:    clientID,
		Title:       title,
		DueDate:     &due,
		Priority:    "high",
		Status:      domain.TaskOpen,
		CreatedByID: createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

func seedRenewingPolicy(t *testing.T, st store.Store, tenantID, clientID string, end time.Time) domain.Policy {
	t.Helper()

	now := time.Now().UTC()
	p := domain.Policy{
		ID:           idx.New().String(),
		TenantID:     tenantID,
		ClientID:     clientID,
		Type:         "auto",
		PolicyNumber: "AP-1001",
		Status:       domain.PolicyActive,
		EndDate:      &end,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Policies().CreatePolicy(context.Background(), p))
	return p
}

func TestBuildForTenant(t *testing.T) {
	svc, _, st := newDigestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	admin := seedUser(t, st, tenant.ID, "admin@acme.test", domain.RoleAdmin)
	client := seedClient(t, st, tenant.ID, admin.ID, "Maya", "Singh", domain.ClientActive)

	seedOverdueTask(t, st, tenant.ID, admin.ID, client.ID, "Chase documents", now.Add(-48*time.Hour))
	seedRenewingPolicy(t, st, tenant.ID, client.ID, now.Add(10*24*time.Hour))

	// Outside the lookahead window; must not appear.
	seedRenewingPolicy(t, st, tenant.ID, client.ID, now.Add(90*24*time.Hour))

	// Future-dated task is not overdue.
	seedOverdueTask(t, st, tenant.ID, admin.ID, client.ID, "Later", now.Add(48*time.Hour))

	d, err := svc.BuildForTenant(ctx, tenant.ID, now)
	require.NoError(t, err)

	require.Len(t, d.Overdue, 1)
	require.Equal(t, "Chase documents", d.Overdue[0].Title)
	require.Equal(t, "Maya Singh", d.Overdue[0].ClientName)

	require.Len(t, d.Renewals, 1)
	require.Equal(t, "auto #AP-1001", d.Renewals[0].Title)
	require.Equal(t, 10, d.Renewals[0].DaysRemaining)
	require.False(t, d.Empty())
}

func TestRunFansOutToTenantMembers(t *testing.T) {
	svc, sender, st := newDigestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	admin := seedUser(t, st, tenant.ID, "admin@acme.test", domain.RoleAdmin)
	seedUser(t, st, tenant.ID, "agent@acme.test", domain.RoleAgent)
	client := seedClient(t, st, tenant.ID, admin.ID, "Maya", "Singh", domain.ClientActive)
	seedOverdueTask(t, st, tenant.ID, admin.ID, client.ID, "Chase documents", now.Add(-time.Hour))

	// A tenant with nothing to report gets no email.
	quiet := seedTenant(t, st, "Quiet Agency", "quiet")
	seedUser(t, st, quiet.ID, "solo@quiet.test", domain.RoleAdmin)

	svc.Run(ctx, now)

	sent := sender.sentEmails()
	require.Len(t, sent, 2)

	recipients := []string{sent[0].To, sent[1].To}
	require.ElementsMatch(t, []string{"admin@acme.test", "agent@acme.test"}, recipients)
	require.Contains(t, sent[0].HTML, "Chase documents")
	require.Contains(t, sent[0].Subject, "Digest")
}

func TestRunIsolatesSendFailures(t *testing.T) {
	svc, sender, st := newDigestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	admin := seedUser(t, st, tenant.ID, "admin@acme.test", domain.RoleAdmin)
	client := seedClient(t, st, tenant.ID, admin.ID, "Maya", "Singh", domain.ClientActive)
	seedOverdueTask(t, st, tenant.ID, admin.ID, client.ID, "Chase documents", now.Add(-time.Hour))

	sender.sendErr = context.DeadlineExceeded

	// A failing email provider must not panic or abort the run.
	svc.Run(ctx, now)
	require.Empty(t, sender.sentEmails())
}

// overdueFailStore wraps a real store but fails the overdue-task lookup
// for the named tenant, or for every tenant when failTenantID is empty.
type overdueFailStore struct {
	store.Store
	failTenantID string
}

func (s overdueFailStore) Tasks() store.Tasks {
	return overdueFailTasks{Tasks: s.Store.Tasks(), failTenantID: s.failTenantID}
}

type overdueFailTasks struct {
	store.Tasks
	failTenantID string
}

func (f overdueFailTasks) ListOverdueTasks(ctx context.Context, tenantID string, before time.Time) ([]domain.OverdueTask, error) {
	if f.failTenantID == "" || tenantID == f.failTenantID {
		return nil, context.DeadlineExceeded
	}
	return f.Tasks.ListOverdueTasks(ctx, tenantID, before)
}

func TestRunReportsErrorWhenAllTenantsFail(t *testing.T) {
	svc, sender, st := newDigestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedTenant(t, st, "Acme Insurance", "acme")
	svc.Store = overdueFailStore{Store: st}

	before := testutil.ToFloat64(svc.Metrics.DigestRunsTotal.WithLabelValues("error"))
	svc.Run(ctx, now)
	after := testutil.ToFloat64(svc.Metrics.DigestRunsTotal.WithLabelValues("error"))

	require.Equal(t, before+1, after)
	require.Empty(t, sender.sentEmails())
}

func TestRunReportsPartialWhenOneTenantFails(t *testing.T) {
	svc, sender, st := newDigestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	healthy := seedTenant(t, st, "Acme Insurance", "acme")
	admin := seedUser(t, st, healthy.ID, "admin@acme.test", domain.RoleAdmin)
	client := seedClient(t, st, healthy.ID, admin.ID, "Maya", "Singh", domain.ClientActive)
	seedOverdueTask(t, st, healthy.ID, admin.ID, client.ID, "Chase documents", now.Add(-time.Hour))

	broken := seedTenant(t, st, "Beacon Brokers", "beacon")
	svc.Store = overdueFailStore{Store: st, failTenantID: broken.ID}

	before := testutil.ToFloat64(svc.Metrics.DigestRunsTotal.WithLabelValues("partial"))
	svc.Run(ctx, now)
	after := testutil.ToFloat64(svc.Metrics.DigestRunsTotal.WithLabelValues("partial"))

	require.Equal(t, before+1, after)

	// The healthy tenant's digest still went out.
	sent := sender.sentEmails()
	require.Len(t, sent, 1)
	require.Equal(t, "admin@acme.test", sent[0].To)
}
