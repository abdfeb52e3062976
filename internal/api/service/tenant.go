package service

import (
	"context"
	"errors"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

var ErrTenantNotFound = errors.New("tenant not found")

// TenantService reads and updates the current agency's profile.
type TenantService struct {
	Store store.Store
}

// Current returns the tenant the identity belongs to.
func (s *TenantService) Current(ctx context.Context, tenantID string) (domain.Tenant, error) {
	t, err := s.Store.Tenants().GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tenant{}, ErrTenantNotFound
		}
		return domain.Tenant{}, err
	}
	return t, nil
}

// Update writes the tenant's mutable profile fields. The slug is fixed
// at creation and never changes.
func (s *TenantService) Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	if err := s.Store.Tenants().UpdateTenant(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tenant{}, ErrTenantNotFound
		}
		return domain.Tenant{}, err
	}
	return s.Current(ctx, t.ID)
}
