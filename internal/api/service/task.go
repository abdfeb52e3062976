package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTaskInput = errors.New("invalid task input")
	ErrTaskAlreadyDone  = errors.New("task is already done")
)

// TaskService manages agency to-dos. Completing a client-linked task
// leaves a timeline event on that client.
type TaskService struct {
	Store store.Store
}

// Create inserts a new open task. A linked client, when given, must
// exist in the actor's tenant.
func (s *TaskService) Create(ctx context.Context, actor domain.Identity, t domain.Task) (domain.Task, error) {
	log := slogx.FromContext(ctx)

	if t.Title == "" {
		return domain.Task{}, ErrInvalidTaskInput
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if !domain.ValidTaskPriority(t.Priority) {
		return domain.Task{}, ErrInvalidTaskInput
	}

	if t.ClientID != "" {
		if _, err := s.Store.Clients().GetClientByID(ctx, actor.TenantID, t.ClientID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Task{}, ErrClientNotFound
			}
			return domain.Task{}, err
		}
	}

	now := time.Now().UTC()
	t.ID = idx.New().String()
	t.TenantID = actor.TenantID
	t.Status = domain.TaskOpen
	t.CreatedByID = actor.ID
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.Store.Tasks().CreateTask(ctx, t); err != nil {
		log.Error("failed to create task", slog.Any("error", err))
		return domain.Task{}, err
	}

	log.Info("task created",
		slog.String("task_id", t.ID),
		slog.String("priority", t.Priority),
	)
	return t, nil
}

// List returns a tenant's tasks, optionally filtered by status.
func (s *TaskService) List(ctx context.Context, tenantID, status string) ([]domain.Task, error) {
	if status != "" && status != domain.TaskOpen && status != domain.TaskDone {
		return nil, ErrInvalidTaskInput
	}
	return s.Store.Tasks().ListTasksByTenant(ctx, tenantID, status)
}

// Complete marks a task done. Completing an already-done task is
// rejected so the timeline does not collect duplicate events.
func (s *TaskService) Complete(ctx context.Context, actor domain.Identity, id string) (domain.Task, error) {
	log := slogx.FromContext(ctx)

	t, err := s.Store.Tasks().GetTaskByID(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	if t.Status == domain.TaskDone {
		return domain.Task{}, ErrTaskAlreadyDone
	}

	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tasks().CompleteTask(ctx, actor.TenantID, id); err != nil {
			return err
		}
		if t.ClientID == "" {
			return nil
		}
		return tx.Events().AddEvent(ctx, domain.Event{
			ID:        idx.New().String(),
			TenantID:  actor.TenantID,
			ClientID:  t.ClientID,
			ActorID:   actor.ID,
			Kind:      domain.EventTaskCompleted,
			Content:   t.Title,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to complete task",
			slog.String("task_id", id),
			slog.Any("error", err),
		)
		return domain.Task{}, err
	}

	t.Status = domain.TaskDone
	t.UpdatedAt = now
	log.Info("task completed", slog.String("task_id", id))
	return t, nil
}
