package domain

import "time"

// Client statuses. A lead becomes a client once business is written;
// the convert operation toggles between the two.
const (
	ClientLead   = "lead"
	ClientActive = "client"
)

// ValidClientStatus reports whether s is a known client status.
func ValidClientStatus(s string) bool {
	return s == ClientLead || s == ClientActive
}

// Client is a person (or prospect) in the agency's book of business.
type Client struct {
	ID          string
	TenantID    string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	Province    string
	PostalCode  string
	DateOfBirth string // ISO date (YYYY-MM-DD), empty when unknown
	Status      string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName returns "First Last".
func (c Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// ClientListItem is the lightweight list-view projection with computed
// policy fields.
type ClientListItem struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Status          string
	PolicyCount     int
	NextRenewalDate *time.Time
	CreatedAt       time.Time
}

// ClientSearch are the list endpoint's filter and pagination options.
type ClientSearch struct {
	Status string // optional: "lead" or "client"
	Search string // optional: matches name, email, phone
	Page   int
	Limit  int
}

// ClientPage is one page of client list results.
type ClientPage struct {
	Items []ClientListItem
	Total int
	Page  int
	Limit int
}
