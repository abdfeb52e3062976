package sqlite

import (
	"context"
	"database/sql"

	"github.com/anchorhq/anchor/internal/api/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, tenant_id, email, first_name, last_name, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u        domain.User
		tenantID sql.NullString
		role     sql.NullString
	)
	err := row.Scan(&u.ID, &tenantID, &u.Email, &u.FirstName, &u.LastName, &role,
		&u.CreatedAt, &u.UpdatedAt)
	u.TenantID = mapNullString(tenantID)
	u.Role = mapNullString(role)
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, tenant_id, email, first_name, last_name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, mapStringNull(u.TenantID), u.Email, u.FirstName, u.LastName,
		mapStringNull(u.Role), u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? ORDER BY created_at, id`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
