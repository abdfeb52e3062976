package sqlite

import (
	"context"

	"github.com/anchorhq/anchor/internal/api/domain"
)

type eventsRepo struct {
	db dbtx
}

func (r *eventsRepo) AddEvent(ctx context.Context, e domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, tenant_id, client_id, actor_id, kind, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.ClientID, e.ActorID, e.Kind, e.Content, e.CreatedAt)
	return mapConstraint(err)
}

func (r *eventsRepo) ListEventsByClient(ctx context.Context, tenantID, clientID string, page, limit int) (domain.EventPage, error) {
	out := domain.EventPage{Page: page, Limit: limit}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE tenant_id = ? AND client_id = ?`,
		tenantID, clientID).Scan(&out.Total)
	if err != nil {
		return domain.EventPage{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, client_id, actor_id, kind, content, created_at
		 FROM events
		 WHERE tenant_id = ? AND client_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		tenantID, clientID, limit, (page-1)*limit)
	if err != nil {
		return domain.EventPage{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ClientID, &e.ActorID, &e.Kind,
			&e.Content, &e.CreatedAt); err != nil {
			return domain.EventPage{}, err
		}
		out.Items = append(out.Items, e)
	}
	return out, rows.Err()
}
