package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
)

type policiesRepo struct {
	db dbtx
}

const policyColumns = `id, tenant_id, client_id, type, custom_type, carrier, policy_number,
	start_date, end_date, premium, coverage_amount, deductible, payment_frequency,
	broker_commission, status, notes, created_at, updated_at`

func scanPolicy(row interface{ Scan(...any) error }) (domain.Policy, error) {
	var (
		p     domain.Policy
		start sql.NullTime
		end   sql.NullTime
	)
	err := row.Scan(&p.ID, &p.TenantID, &p.ClientID, &p.Type, &p.CustomType, &p.Carrier,
		&p.PolicyNumber, &start, &end, &p.Premium, &p.CoverageAmount, &p.Deductible,
		&p.PaymentFrequency, &p.BrokerCommission, &p.Status, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt)
	p.StartDate = mapNullTimePtr(start)
	p.EndDate = mapNullTimePtr(end)
	return p, err
}

func (r *policiesRepo) CreatePolicy(ctx context.Context, p domain.Policy) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO policies (id, tenant_id, client_id, type, custom_type, carrier,
		                       policy_number, start_date, end_date, premium, coverage_amount,
		                       deductible, payment_frequency, broker_commission, status,
		                       notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.ClientID, p.Type, p.CustomType, p.Carrier,
		p.PolicyNumber, mapTimeNull(p.StartDate), mapTimeNull(p.EndDate),
		p.Premium, p.CoverageAmount, p.Deductible, p.PaymentFrequency,
		p.BrokerCommission, p.Status, p.Notes, p.CreatedAt, p.UpdatedAt)
	return mapConstraint(err)
}

func (r *policiesRepo) GetPolicyByID(ctx context.Context, tenantID, id string) (domain.Policy, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = ? AND tenant_id = ?`,
		id, tenantID)

	p, err := scanPolicy(row)
	if err != nil {
		return domain.Policy{}, mapNotFound(err)
	}
	return p, nil
}

func (r *policiesRepo) ListPoliciesByClient(ctx context.Context, tenantID, clientID string) ([]domain.Policy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+policyColumns+` FROM policies
		 WHERE tenant_id = ? AND client_id = ?
		 ORDER BY created_at DESC, id DESC`,
		tenantID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []domain.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (r *policiesRepo) UpdatePolicy(ctx context.Context, p domain.Policy) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE policies SET type = ?, custom_type = ?, carrier = ?, policy_number = ?,
		        start_date = ?, end_date = ?, premium = ?, coverage_amount = ?,
		        deductible = ?, payment_frequency = ?, broker_commission = ?,
		        status = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		p.Type, p.CustomType, p.Carrier, p.PolicyNumber,
		mapTimeNull(p.StartDate), mapTimeNull(p.EndDate), p.Premium, p.CoverageAmount,
		p.Deductible, p.PaymentFrequency, p.BrokerCommission,
		p.Status, p.Notes, time.Now().UTC(), p.ID, p.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *policiesRepo) DeletePolicy(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM policies WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *policiesRepo) ListRenewalsDue(ctx context.Context, tenantID string, from, to time.Time) ([]domain.RenewalDue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.tenant_id, p.client_id, p.type, p.custom_type, p.carrier,
		        p.policy_number, p.start_date, p.end_date, p.premium, p.coverage_amount,
		        p.deductible, p.payment_frequency, p.broker_commission, p.status,
		        p.notes, p.created_at, p.updated_at,
		        c.first_name, c.last_name
		 FROM policies p
		 JOIN clients c ON c.id = p.client_id
		 WHERE p.tenant_id = ?
		   AND p.status IN ('active', 'pending_renewal')
		   AND p.end_date IS NOT NULL
		   AND p.end_date >= ? AND p.end_date <= ?
		 ORDER BY p.end_date, p.id`,
		tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RenewalDue
	for rows.Next() {
		var (
			item       domain.RenewalDue
			start, end sql.NullTime
			first      string
			last       string
		)
		p := &item.Policy
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ClientID, &p.Type, &p.CustomType,
			&p.Carrier, &p.PolicyNumber, &start, &end, &p.Premium, &p.CoverageAmount,
			&p.Deductible, &p.PaymentFrequency, &p.BrokerCommission, &p.Status,
			&p.Notes, &p.CreatedAt, &p.UpdatedAt, &first, &last); err != nil {
			return nil, err
		}
		p.StartDate = mapNullTimePtr(start)
		p.EndDate = mapNullTimePtr(end)
		item.ClientName = domain.Client{FirstName: first, LastName: last}.FullName()
		out = append(out, item)
	}
	return out, rows.Err()
}
