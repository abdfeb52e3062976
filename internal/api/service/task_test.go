package service

import (
	"context"
	"testing"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/stretchr/testify/require"
)

func newTaskService(t *testing.T) (*TaskService, store.Store, domain.Identity) {
	t.Helper()

	st := newTestStore(t)
	tenant := seedTenant(t, st, "Acme Insurance", "acme")
	agent := seedUser(t, st, tenant.ID, "agent@acme.test", domain.RoleAgent)

	return &TaskService{Store: st}, st, identityFor(agent)
}

func TestCreateTask(t *testing.T) {
	svc, _, agent := newTaskService(t)
	ctx := context.Background()

	due := time.Now().UTC().Add(24 * time.Hour)
	task, err := svc.Create(ctx, agent, domain.Task{
		Title:   "Call about renewal",
		DueDate: &due,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TaskOpen, task.Status)
	require.Equal(t, "medium", task.Priority)

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := svc.Create(ctx, agent, domain.Task{})
		require.ErrorIs(t, err, ErrInvalidTaskInput)
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		_, err := svc.Create(ctx, agent, domain.Task{Title: "x", Priority: "asap"})
		require.ErrorIs(t, err, ErrInvalidTaskInput)
	})

	t.Run("rejects unknown linked client", func(t *testing.T) {
		_, err := svc.Create(ctx, agent, domain.Task{Title: "x", ClientID: "nope"})
		require.ErrorIs(t, err, ErrClientNotFound)
	})
}

func TestCompleteTask(t *testing.T) {
	svc, st, agent := newTaskService(t)
	ctx := context.Background()

	client := seedClient(t, st, agent.TenantID, agent.ID, "Maya", "Singh", domain.ClientActive)

	task, err := svc.Create(ctx, agent, domain.Task{
		Title:    "File claim paperwork",
		ClientID: client.ID,
	})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, agent, task.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TaskDone, done.Status)

	// Client-linked completion lands on the timeline.
	page, err := st.Events().ListEventsByClient(ctx, agent.TenantID, client.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, domain.EventTaskCompleted, page.Items[0].Kind)
	require.Equal(t, "File claim paperwork", page.Items[0].Content)

	// Completing twice is rejected.
	_, err = svc.Complete(ctx, agent, task.ID)
	require.ErrorIs(t, err, ErrTaskAlreadyDone)
}

func TestListTasksFiltersByStatus(t *testing.T) {
	svc, _, agent := newTaskService(t)
	ctx := context.Background()

	open, err := svc.Create(ctx, agent, domain.Task{Title: "open one"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, agent, domain.Task{Title: "open two"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, agent, open.ID)
	require.NoError(t, err)

	openTasks, err := svc.List(ctx, agent.TenantID, domain.TaskOpen)
	require.NoError(t, err)
	require.Len(t, openTasks, 1)

	doneTasks, err := svc.List(ctx, agent.TenantID, domain.TaskDone)
	require.NoError(t, err)
	require.Len(t, doneTasks, 1)

	all, err := svc.List(ctx, agent.TenantID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.List(ctx, agent.TenantID, "archived")
	require.ErrorIs(t, err, ErrInvalidTaskInput)
}
