package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/idx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

var ErrEmptyNote = errors.New("note content is empty")

// TimelineService reads a client's activity timeline and appends
// user-authored notes to it. Timeline events are append only.
type TimelineService struct {
	Store store.Store
}

// AddNote appends a note event to a client's timeline.
func (s *TimelineService) AddNote(ctx context.Context, actor domain.Identity, clientID, content string) (domain.Event, error) {
	log := slogx.FromContext(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Event{}, ErrEmptyNote
	}

	if _, err := s.Store.Clients().GetClientByID(ctx, actor.TenantID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Event{}, ErrClientNotFound
		}
		return domain.Event{}, err
	}

	e := domain.Event{
		ID:        idx.New().String(),
		TenantID:  actor.TenantID,
		ClientID:  clientID,
		ActorID:   actor.ID,
		Kind:      domain.EventNote,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Store.Events().AddEvent(ctx, e); err != nil {
		log.Error("failed to add note",
			slog.String("client_id", clientID),
			slog.Any("error", err),
		)
		return domain.Event{}, err
	}

	return e, nil
}

// List returns one page of a client's timeline, newest first.
func (s *TimelineService) List(ctx context.Context, tenantID, clientID string, page, limit int) (domain.EventPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if _, err := s.Store.Clients().GetClientByID(ctx, tenantID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.EventPage{}, ErrClientNotFound
		}
		return domain.EventPage{}, err
	}

	return s.Store.Events().ListEventsByClient(ctx, tenantID, clientID, page, limit)
}
