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
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrInvalidPolicyInput = errors.New("invalid policy input")
)

// PolicyService manages insurance policies under clients and the
// timeline events policy mutations produce.
type PolicyService struct {
	Store store.Store
}

func validatePolicy(p domain.Policy) error {
	if !domain.ValidPolicyType(p.Type) {
		return ErrInvalidPolicyInput
	}
	if p.Type == "other" && p.CustomType == "" {
		return ErrInvalidPolicyInput
	}
	if p.Status != "" && !domain.ValidPolicyStatus(p.Status) {
		return ErrInvalidPolicyInput
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrInvalidPolicyInput
	}
	return nil
}

// Create inserts a policy under a client and records a policy_created
// timeline event.
func (s *PolicyService) Create(ctx context.Context, actor domain.Identity, clientID string, p domain.Policy) (domain.Policy, error) {
	log := slogx.FromContext(ctx)

	if err := validatePolicy(p); err != nil {
		return domain.Policy{}, err
	}
	if p.Status == "" {
		p.Status = domain.PolicyDraft
	}

	// Client must exist in the actor's tenant.
	if _, err := s.Store.Clients().GetClientByID(ctx, actor.TenantID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Policy{}, ErrClientNotFound
		}
		return domain.Policy{}, err
	}

	now := time.Now().UTC()
	p.ID = idx.New().String()
	p.TenantID = actor.TenantID
	p.ClientID = clientID
	p.CreatedAt = now
	p.UpdatedAt = now

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Policies().CreatePolicy(ctx, p); err != nil {
			return err
		}
		return tx.Events().AddEvent(ctx, domain.Event{
			ID:        idx.New().String(),
			TenantID:  p.TenantID,
			ClientID:  p.ClientID,
			ActorID:   actor.ID,
			Kind:      domain.EventPolicyCreated,
			Content:   p.Type,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to create policy", slog.Any("error", err))
		return domain.Policy{}, err
	}

	log.Info("policy created",
		slog.String("policy_id", p.ID),
		slog.String("client_id", p.ClientID),
		slog.String("type", p.Type),
	)
	return p, nil
}

// Get returns a single policy scoped to a tenant.
func (s *PolicyService) Get(ctx context.Context, tenantID, id string) (domain.Policy, error) {
	p, err := s.Store.Policies().GetPolicyByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Policy{}, ErrPolicyNotFound
		}
		return domain.Policy{}, err
	}
	return p, nil
}

// ListByClient returns a client's policies newest first.
func (s *PolicyService) ListByClient(ctx context.Context, tenantID, clientID string) ([]domain.Policy, error) {
	if _, err := s.Store.Clients().GetClientByID(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return s.Store.Policies().ListPoliciesByClient(ctx, tenantID, clientID)
}

// Update writes a policy's mutable fields and records a policy_updated
// timeline event.
func (s *PolicyService) Update(ctx context.Context, actor domain.Identity, p domain.Policy) (domain.Policy, error) {
	log := slogx.FromContext(ctx)

	if err := validatePolicy(p); err != nil {
		return domain.Policy{}, err
	}

	current, err := s.Get(ctx, actor.TenantID, p.ID)
	if err != nil {
		return domain.Policy{}, err
	}
	if p.Status == "" {
		p.Status = current.Status
	}
	p.TenantID = actor.TenantID
	p.ClientID = current.ClientID

	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Policies().UpdatePolicy(ctx, p); err != nil {
			return err
		}
		return tx.Events().AddEvent(ctx, domain.Event{
			ID:        idx.New().String(),
			TenantID:  p.TenantID,
			ClientID:  p.ClientID,
			ActorID:   actor.ID,
			Kind:      domain.EventPolicyUpdated,
			Content:   p.Type,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to update policy",
			slog.String("policy_id", p.ID),
			slog.Any("error", err),
		)
		return domain.Policy{}, err
	}

	return s.Get(ctx, actor.TenantID, p.ID)
}

// Delete removes a policy.
func (s *PolicyService) Delete(ctx context.Context, tenantID, id string) error {
	err := s.Store.Policies().DeletePolicy(ctx, tenantID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrPolicyNotFound
	}
	return err
}
