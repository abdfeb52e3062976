package sqlite

import (
	"context"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, name, slug, phone, address, province, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Phone, &t.Address, &t.Province,
		&t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)

	t, err := scanTenant(row)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, slug, phone, address, province, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, t.Phone, t.Address, t.Province, t.CreatedAt, t.UpdatedAt)
	return mapConstraint(err)
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, phone = ?, address = ?, province = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Phone, t.Address, t.Province, time.Now().UTC(), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
