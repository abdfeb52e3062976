package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/email"
	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/store"
)

// renewalWindow is how far ahead the digest looks for policy renewals.
const renewalWindow = 30 * 24 * time.Hour

// DigestService builds and delivers the daily summary email: overdue
// tasks plus policies approaching renewal, per tenant, fanned out to
// every member.
type DigestService struct {
	Store   store.Store
	Sender  email.Sender
	Metrics *metrics.APIMetrics
	Logger  *slog.Logger
}

// BuildForTenant assembles the digest content for one tenant as of now.
// UserName is left empty; Run personalizes per recipient.
func (s *DigestService) BuildForTenant(ctx context.Context, tenantID string, now time.Time) (domain.Digest, error) {
	d := domain.Digest{Date: now.Format("Monday, January 2, 2006")}

	overdue, err := s.Store.Tasks().ListOverdueTasks(ctx, tenantID, now)
	if err != nil {
		return domain.Digest{}, err
	}
	for _, o := range overdue {
		d.Overdue = append(d.Overdue, domain.DigestTask{
			ID:         o.Task.ID,
			Title:      o.Task.Title,
			DueDate:    o.Task.DueDate,
			ClientName: o.ClientName,
			Priority:   o.Task.Priority,
		})
	}

	renewals, err := s.Store.Policies().ListRenewalsDue(ctx, tenantID, now, now.Add(renewalWindow))
	if err != nil {
		return domain.Digest{}, err
	}
	for _, r := range renewals {
		title := r.Policy.Type
		if r.Policy.Type == "other" && r.Policy.CustomType != "" {
			title = r.Policy.CustomType
		}
		if r.Policy.PolicyNumber != "" {
			title += " #" + r.Policy.PolicyNumber
		}
		days := 0
		if r.Policy.EndDate != nil {
			days = int(r.Policy.EndDate.Sub(now).Hours() / 24)
		}
		d.Renewals = append(d.Renewals, domain.DigestRenewal{
			ID:            r.Policy.ID,
			Title:         title,
			DueDate:       r.Policy.EndDate,
			ClientName:    r.ClientName,
			DaysRemaining: days,
		})
	}

	return d, nil
}

// Run executes one full digest fan-out across all tenants. A failure
// in one tenant is logged and skipped; the run carries on so one bad
// tenant cannot starve every other agency of its digest.
func (s *DigestService) Run(ctx context.Context, now time.Time) {
	tenants, err := s.Store.Tenants().ListTenants(ctx)
	if err != nil {
		s.Logger.Error("digest run failed to list tenants", "error", err)
		s.Metrics.DigestRunsTotal.WithLabelValues("error").Inc()
		return
	}

	failures := 0
	for _, tenant := range tenants {
		if err := s.runTenant(ctx, tenant, now); err != nil {
			s.Logger.Error("digest failed for tenant",
				"tenant_id", tenant.ID,
				"error", err,
			)
			s.Metrics.DigestTenantErrors.Inc()
			failures++
		}
	}

	status := "ok"
	switch {
	case failures == 0:
	case failures == len(tenants):
		status = "error"
	default:
		status = "partial"
	}
	s.Metrics.DigestRunsTotal.WithLabelValues(status).Inc()
	s.Logger.Info("digest run completed",
		"tenants", len(tenants),
		"failures", failures,
	)
}

func (s *DigestService) runTenant(ctx context.Context, tenant domain.Tenant, now time.Time) error {
	d, err := s.BuildForTenant(ctx, tenant.ID, now)
	if err != nil {
		return err
	}
	if d.Empty() {
		s.Logger.Debug("digest empty, skipping tenant", "tenant_id", tenant.ID)
		return nil
	}

	users, err := s.Store.Users().ListUsersByTenant(ctx, tenant.ID)
	if err != nil {
		return err
	}

	for _, u := range users {
		d.UserName = u.FirstName
		body, err := email.RenderDigest(d)
		if err != nil {
			return err
		}
		if err := s.Sender.Send(ctx, u.Email, email.DigestSubject, body); err != nil {
			// A single bounced recipient should not block the rest of
			// the tenant's members.
			s.Logger.Warn("digest send failed",
				"tenant_id", tenant.ID,
				"user_id", u.ID,
				"error", err,
			)
			continue
		}
		s.Metrics.DigestEmailsSent.Inc()
	}

	return nil
}
