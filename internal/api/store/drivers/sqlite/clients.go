package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, tenant_id, first_name, last_name, email, phone, address, city,
	province, postal_code, date_of_birth, status, created_by_id, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.City, &c.Province, &c.PostalCode, &c.DateOfBirth, &c.Status,
		&c.CreatedByID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, tenant_id, first_name, last_name, email, phone, address,
		                      city, province, postal_code, date_of_birth, status,
		                      created_by_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
		c.City, c.Province, c.PostalCode, c.DateOfBirth, c.Status,
		c.CreatedByID, c.CreatedAt, c.UpdatedAt)
	return mapConstraint(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, tenantID, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ? AND tenant_id = ?`,
		id, tenantID)

	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) SearchClients(ctx context.Context, tenantID string, q domain.ClientSearch) (domain.ClientPage, error) {
	where := `c.tenant_id = ?`
	args := []any{tenantID}

	if q.Status != "" {
		where += ` AND c.status = ?`
		args = append(args, q.Status)
	}
	if q.Search != "" {
		where += ` AND (c.first_name LIKE ? OR c.last_name LIKE ? OR c.email LIKE ? OR c.phone LIKE ?)`
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	page := domain.ClientPage{Page: q.Page, Limit: q.Limit}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients c WHERE `+where, args...).Scan(&page.Total)
	if err != nil {
		return domain.ClientPage{}, err
	}

	offset := (q.Page - 1) * q.Limit
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.first_name, c.last_name, c.email, c.phone, c.status, c.created_at,
		        COUNT(p.id),
		        MIN(CASE WHEN p.status IN ('active', 'pending_renewal') THEN p.end_date END)
		 FROM clients c
		 LEFT JOIN policies p ON p.client_id = c.id
		 WHERE `+where+`
		 GROUP BY c.id
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT ? OFFSET ?`,
		append(args, q.Limit, offset)...)
	if err != nil {
		return domain.ClientPage{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    domain.ClientListItem
			renewal sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.FirstName, &item.LastName, &item.Email,
			&item.Phone, &item.Status, &item.CreatedAt, &item.PolicyCount, &renewal); err != nil {
			return domain.ClientPage{}, err
		}
		if renewal.Valid {
			// The MIN() aggregate strips end_date's TIMESTAMP decltype,
			// so the value arrives as text.
			ts, err := parseTimeText(renewal.String)
			if err != nil {
				return domain.ClientPage{}, err
			}
			item.NextRenewalDate = &ts
		}
		page.Items = append(page.Items, item)
	}
	return page, rows.Err()
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET first_name = ?, last_name = ?, email = ?, phone = ?,
		        address = ?, city = ?, province = ?, postal_code = ?,
		        date_of_birth = ?, status = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.Province,
		c.PostalCode, c.DateOfBirth, c.Status, time.Now().UTC(), c.ID, c.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *clientsRepo) DeleteClient(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
