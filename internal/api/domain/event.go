package domain

import "time"

// Timeline event kinds. Notes are immutable user-authored events; the
// rest are recorded automatically by mutations.
const (
	EventNote            = "note"
	EventClientCreated   = "client_created"
	EventClientConverted = "client_converted"
	EventPolicyCreated   = "policy_created"
	EventPolicyUpdated   = "policy_updated"
	EventTaskCompleted   = "task_completed"
)

// Event is one entry in a client's activity timeline. Events are append
// only; there is no update or delete.
type Event struct {
	ID        string
	TenantID  string
	ClientID  string
	ActorID   string
	Kind      string
	Content   string
	CreatedAt time.Time
}

// EventPage is one page of a client's timeline, newest first.
type EventPage struct {
	Items []Event
	Total int
	Page  int
	Limit int
}
