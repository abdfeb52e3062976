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
	ErrClientNotFound      = errors.New("client not found")
	ErrInvalidClientInput  = errors.New("invalid client input")
	ErrClientAlreadyActive = errors.New("client has already been converted")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ClientService manages the book of business: leads, active clients,
// and the automatic timeline events their mutations leave behind.
type ClientService struct {
	Store store.Store
}

// Create inserts a new client or lead and records a creation event on
// its timeline.
func (s *ClientService) Create(ctx context.Context, actor domain.Identity, c domain.Client) (domain.Client, error) {
	log := slogx.FromContext(ctx)

	if c.FirstName == "" && c.LastName == "" {
		return domain.Client{}, ErrInvalidClientInput
	}
	if c.Status == "" {
		c.Status = domain.ClientLead
	}
	if !domain.ValidClientStatus(c.Status) {
		return domain.Client{}, ErrInvalidClientInput
	}

	now := time.Now().UTC()
	c.ID = idx.New().String()
	c.TenantID = actor.TenantID
	c.CreatedByID = actor.ID
	c.CreatedAt = now
	c.UpdatedAt = now

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().CreateClient(ctx, c); err != nil {
			return err
		}
		return tx.Events().AddEvent(ctx, domain.Event{
			ID:        idx.New().String(),
			TenantID:  c.TenantID,
			ClientID:  c.ID,
			ActorID:   actor.ID,
			Kind:      domain.EventClientCreated,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to create client", slog.Any("error", err))
		return domain.Client{}, err
	}

	log.Info("client created",
		slog.String("client_id", c.ID),
		slog.String("status", c.Status),
	)
	return c, nil
}

// Get returns a single client scoped to the actor's tenant.
func (s *ClientService) Get(ctx context.Context, tenantID, id string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClientByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}
	return c, nil
}

// Search returns a filtered, paginated client list with per-client
// policy counts and next renewal dates. Page and limit are normalized
// to sane bounds.
func (s *ClientService) Search(ctx context.Context, tenantID string, q domain.ClientSearch) (domain.ClientPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.Status != "" && !domain.ValidClientStatus(q.Status) {
		return domain.ClientPage{}, ErrInvalidClientInput
	}

	return s.Store.Clients().SearchClients(ctx, tenantID, q)
}

// Update writes a client's mutable fields.
func (s *ClientService) Update(ctx context.Context, tenantID string, c domain.Client) (domain.Client, error) {
	if c.Status != "" && !domain.ValidClientStatus(c.Status) {
		return domain.Client{}, ErrInvalidClientInput
	}

	current, err := s.Get(ctx, tenantID, c.ID)
	if err != nil {
		return domain.Client{}, err
	}
	if c.Status == "" {
		c.Status = current.Status
	}
	c.TenantID = tenantID

	if err := s.Store.Clients().UpdateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}

	return s.Get(ctx, tenantID, c.ID)
}

// Delete removes a client. Policies, timeline events and linked tasks
// cascade with it.
func (s *ClientService) Delete(ctx context.Context, tenantID, id string) error {
	err := s.Store.Clients().DeleteClient(ctx, tenantID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}

// Convert promotes a lead to an active client and records the
// conversion on the timeline. Converting an already-active client is
// rejected.
func (s *ClientService) Convert(ctx context.Context, actor domain.Identity, id string) (domain.Client, error) {
	log := slogx.FromContext(ctx)

	c, err := s.Get(ctx, actor.TenantID, id)
	if err != nil {
		return domain.Client{}, err
	}
	if c.Status == domain.ClientActive {
		return domain.Client{}, ErrClientAlreadyActive
	}

	now := time.Now().UTC()
	c.Status = domain.ClientActive

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().UpdateClient(ctx, c); err != nil {
			return err
		}
		return tx.Events().AddEvent(ctx, domain.Event{
			ID:        idx.New().String(),
			TenantID:  c.TenantID,
			ClientID:  c.ID,
			ActorID:   actor.ID,
			Kind:      domain.EventClientConverted,
			CreatedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to convert client",
			slog.String("client_id", c.ID),
			slog.Any("error", err),
		)
		return domain.Client{}, err
	}

	log.Info("client converted", slog.String("client_id", c.ID))
	c.UpdatedAt = now
	return c, nil
}
