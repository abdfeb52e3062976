package sqlite

import (
	"context"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, tenant_id, email, role, invited_by_id, status, expires_at, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.InvitedByID,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, tenant_id, email, role, invited_by_id, status, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TenantID, inv.Email, inv.Role, inv.InvitedByID, inv.Status,
		inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, tenantID, id string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ? AND tenant_id = ?`,
		id, tenantID)

	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) CountActiveByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations
		 WHERE tenant_id = ? AND status IN ('pending', 'accepted')`,
		tenantID).Scan(&count)
	return count, err
}

func (r *invitationsRepo) GetPendingByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE tenant_id = ? AND email = ? AND status = 'pending'`,
		tenantID, email)

	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetNewestPendingByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE email = ? AND status = 'pending'
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		email)

	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) Refresh(ctx context.Context, id string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'pending', expires_at = ?, updated_at = ? WHERE id = ?`,
		expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	return err
}

func (r *invitationsRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.InvitationWithInviter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.tenant_id, i.email, i.role, i.invited_by_id, i.status,
		        i.expires_at, i.created_at, i.updated_at,
		        u.id, u.first_name, u.last_name, u.email
		 FROM invitations i
		 JOIN users u ON u.id = i.invited_by_id
		 WHERE i.tenant_id = ?
		 ORDER BY i.created_at DESC, i.id DESC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InvitationWithInviter
	for rows.Next() {
		var item domain.InvitationWithInviter
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.Email, &item.Role, &item.InvitedByID,
			&item.Status, &item.ExpiresAt, &item.CreatedAt, &item.UpdatedAt,
			&item.InvitedBy.ID, &item.InvitedBy.FirstName, &item.InvitedBy.LastName,
			&item.InvitedBy.Email,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
