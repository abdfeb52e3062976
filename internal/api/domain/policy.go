package domain

import (
	"slices"
	"time"
)

// Policy types per the lines of business the agency writes.
var PolicyTypes = []string{
	"auto", "home", "life", "health", "commercial", "travel", "umbrella", "other",
}

// Policy statuses across the renewal lifecycle.
var PolicyStatuses = []string{
	"draft", "active", "pending_renewal", "renewed", "expired", "cancelled",
}

const (
	PolicyDraft          = "draft"
	PolicyActive         = "active"
	PolicyPendingRenewal = "pending_renewal"
)

// ValidPolicyType reports whether t is a known policy type.
func ValidPolicyType(t string) bool { return slices.Contains(PolicyTypes, t) }

// ValidPolicyStatus reports whether s is a known policy status.
func ValidPolicyStatus(s string) bool { return slices.Contains(PolicyStatuses, s) }

// Policy is an insurance policy attached to a client. Monetary fields
// are decimal strings ("1250.00"); arithmetic on premiums is out of
// scope for this service.
type Policy struct {
	ID               string
	TenantID         string
	ClientID         string
	Type             string
	CustomType       string // required when Type is "other"
	Carrier          string
	PolicyNumber     string
	StartDate        *time.Time
	EndDate          *time.Time
	Premium          string
	CoverageAmount   string
	Deductible       string
	PaymentFrequency string // monthly, quarterly, semi_annual, annual
	BrokerCommission string
	Status           string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
