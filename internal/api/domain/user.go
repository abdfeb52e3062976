package domain

import "time"

// User is the persisted record for a tenant member. The id matches the
// identity provider's user id so claim resolution can join the two.
type User struct {
	ID        string
	TenantID  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last" with whatever parts are present.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
