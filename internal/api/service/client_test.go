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

func newClientService(t *testing.T) (*ClientService, store.Store, domain.Identity) {
	t.Helper()

	st := newTestStore(t)
	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	agent := seedUser(t, st, tenant.ID, "agent@acme.test", domain.RoleAgent)

	return &ClientService{Store: st}, st, identityFor(agent)
}

func TestCreateClientRecordsTimelineEvent(t *testing.T) {
	svc, st, agent := newClientService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, agent, domain.Client{
		FirstName: "Maya",
		LastName:  "Singh",
		Email:     "maya@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ClientLead, c.Status)
	require.Equal(t, agent.TenantID, c.TenantID)
	require.Equal(t, agent.ID, c.CreatedByID)

	page, err := st.Events().ListEventsByClient(ctx, agent.TenantID, c.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, domain.EventClientCreated, page.Items[0].Kind)
}

func TestCreateClientValidatesInput(t *testing.T) {
	svc, _, agent := newClientService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, agent, domain.Client{})
	require.ErrorIs(t, err, ErrInvalidClientInput)

	_, err = svc.Create(ctx, agent, domain.Client{FirstName: "X", Status: "archived"})
	require.ErrorIs(t, err, ErrInvalidClientInput)
}

func TestConvertLead(t *testing.T) {
	svc, st, agent := newClientService(t)
	ctx := context.Background()

	lead := seedClient(t, st, agent.TenantID, agent.ID, "Omar", "Reyes", domain.ClientLead)

	converted, err := svc.Convert(ctx, agent, lead.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ClientActive, converted.Status)

	page, err := st.Events().ListEventsByClient(ctx, agent.TenantID, lead.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, domain.EventClientConverted, page.Items[0].Kind)

	// Converting twice is rejected.
	_, err = svc.Convert(ctx, agent, lead.ID)
	require.ErrorIs(t, err, ErrClientAlreadyActive)
}

func TestSearchClients(t *testing.T) {
	svc, st, agent := newClientService(t)
	ctx := context.Background()

	seedClient(t, st, agent.TenantID, agent.ID, "Maya", "Singh", domain.ClientActive)
	seedClient(t, st, agent.TenantID, agent.ID, "Omar", "Reyes", domain.ClientLead)
	seedClient(t, st, agent.TenantID, agent.ID, "Olga", "Reyes", domain.ClientLead)

	// Another tenant's clients never leak into the results.
	other := seedTenant(t, st, "Beacon Brokers", "beacon")
	otherAdmin := seedUser(t, st, other.ID, "admin@beacon.test", domain.RoleAdmin)
	seedClient(t, st, other.ID, otherAdmin.ID, "Maya", "Other", domain.ClientActive)

	t.Run("filters by status", func(t *testing.T) {
		page, err := svc.Search(ctx, agent.TenantID, domain.ClientSearch{Status: domain.ClientLead})
		require.NoError(t, err)
		require.Equal(t, 2, page.Total)
	})

	t.Run("matches by name", func(t *testing.T) {
		page, err := svc.Search(ctx, agent.TenantID, domain.ClientSearch{Search: "Reyes"})
		require.NoError(t, err)
		require.Equal(t, 2, page.Total)
	})

	t.Run("scoped to the tenant", func(t *testing.T) {
		page, err := svc.Search(ctx, agent.TenantID, domain.ClientSearch{})
		require.NoError(t, err)
		require.Equal(t, 3, page.Total)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := svc.Search(ctx, agent.TenantID, domain.ClientSearch{Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		require.Equal(t, 3, page.Total)

		page, err = svc.Search(ctx, agent.TenantID, domain.ClientSearch{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
	})
}

func TestSearchClientsComputesPolicyFields(t *testing.T) {
	svc, st, agent := newClientService(t)
	ctx := context.Background()

	c := seedClient(t, st, agent.TenantID, agent.ID, "Maya", "Singh", domain.ClientActive)

	now := time.Now().UTC()
	soon := now.Add(10 * 24 * time.Hour)
	later := now.Add(60 * 24 * time.Hour)
	for _, end := range []time.Time{later, soon} {
		end := end
		require.NoError(t, st.Policies().CreatePolicy(ctx, domain.Policy{
			ID:        idx.New().String(),
			TenantID:  agent.TenantID,
			ClientID:  c.ID,
			Type:      "auto",
			Status:    domain.PolicyActive,
			EndDate:   &end,
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}

	page, err := svc.Search(ctx, agent.TenantID, domain.ClientSearch{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 2, page.Items[0].PolicyCount)
	require.NotNil(t, page.Items[0].NextRenewalDate)
	require.WithinDuration(t, soon, *page.Items[0].NextRenewalDate, time.Second)
}

func TestDeleteClientCascades(t *testing.T) {
	svc, st, agent := newClientService(t)
	ctx := context.Background()

	c := seedClient(t, st, agent.TenantID, agent.ID, "Omar", "Reyes", domain.ClientLead)

	now := time.Now().UTC()
	require.NoError(t, st.Policies().CreatePolicy(ctx, domain.Policy{
		ID:        idx.New().String(),
		TenantID:  agent.TenantID,
		ClientID:  c.ID,
		Type:      "home",
		Status:    domain.PolicyDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	require.NoError(t, svc.Delete(ctx, agent.TenantID, c.ID))

	_, err := svc.Get(ctx, agent.TenantID, c.ID)
	require.ErrorIs(t, err, ErrClientNotFound)

	policies, err := st.Policies().ListPoliciesByClient(ctx, agent.TenantID, c.ID)
	require.NoError(t, err)
	require.Empty(t, policies)
}
