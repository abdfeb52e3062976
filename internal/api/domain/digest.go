package domain

import "time"

// DigestTask is an overdue task line in the daily digest.
type DigestTask struct {
	ID         string
	Title      string
	DueDate    *time.Time
	ClientName string
	Priority   string
}

// DigestRenewal is an upcoming policy renewal line in the daily digest.
type DigestRenewal struct {
	ID            string
	Title         string
	DueDate       *time.Time
	ClientName    string
	DaysRemaining int
}

// Digest is one recipient's daily summary.
type Digest struct {
	UserName string
	Date     string
	Overdue  []DigestTask
	Renewals []DigestRenewal
}

// Empty reports whether the digest has nothing to say.
func (d Digest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.Renewals) == 0
}

// OverdueTask is a task joined with its client's name for digest
// rendering.
type OverdueTask struct {
	Task       Task
	ClientName string
}

// RenewalDue is a policy approaching its end date joined with its
// client's name.
type RenewalDue struct {
	Policy     Policy
	ClientName string
}
