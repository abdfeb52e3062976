package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, tenant_id, client_id, title, due_date, priority, status, created_by_id, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var (
		t        domain.Task
		clientID sql.NullString
		due      sql.NullTime
	)
	err := row.Scan(&t.ID, &t.TenantID, &clientID, &t.Title, &due, &t.Priority,
		&t.Status, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	t.ClientID = mapNullString(clientID)
	t.DueDate = mapNullTimePtr(due)
	return t, err
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, tenant_id, client_id, title, due_date, priority, status,
		                    created_by_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, mapStringNull(t.ClientID), t.Title, mapTimeNull(t.DueDate),
		t.Priority, t.Status, t.CreatedByID, t.CreatedAt, t.UpdatedAt)
	return mapConstraint(err)
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, tenantID, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND tenant_id = ?`,
		id, tenantID)

	t, err := scanTask(row)
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tasksRepo) ListTasksByTenant(ctx context.Context, tenantID, status string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE tenant_id = ?`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY status, due_date IS NULL, due_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *tasksRepo) CompleteTask(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'done', updated_at = ? WHERE id = ? AND tenant_id = ?`,
		time.Now().UTC(), id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) ListOverdueTasks(ctx context.Context, tenantID string, before time.Time) ([]domain.OverdueTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.tenant_id, t.client_id, t.title, t.due_date, t.priority,
		        t.status, t.created_by_id, t.created_at, t.updated_at,
		        COALESCE(c.first_name, ''), COALESCE(c.last_name, '')
		 FROM tasks t
		 LEFT JOIN clients c ON c.id = t.client_id
		 WHERE t.tenant_id = ? AND t.status = 'open'
		   AND t.due_date IS NOT NULL AND t.due_date < ?
		 ORDER BY t.due_date, t.id`,
		tenantID, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OverdueTask
	for rows.Next() {
		var (
			item     domain.OverdueTask
			clientID sql.NullString
			due      sql.NullTime
			first    string
			last     string
		)
		t := &item.Task
		if err := rows.Scan(&t.ID, &t.TenantID, &clientID, &t.Title, &due, &t.Priority,
			&t.Status, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt, &first, &last); err != nil {
			return nil, err
		}
		t.ClientID = mapNullString(clientID)
		t.DueDate = mapNullTimePtr(due)
		item.ClientName = domain.Client{FirstName: first, LastName: last}.FullName()
		out = append(out, item)
	}
	return out, rows.Err()
}
