package domain

import "time"

// Tenant is an isolated agency account. Every client, policy, task and
// invitation belongs to exactly one tenant.
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Phone     string
	Address   string
	Province  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
