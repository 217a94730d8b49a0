package dispute

import "time"

const (
	StatusOpen        = "open"
	StatusUnderReview = "under_review"
	StatusResolved    = "resolved"
	StatusRejected    = "rejected"
)

type Dispute struct {
	ID             string
	FixtureID      string
	RaisedByTeamID string
	Reason         string
	Status         string
	Outcome        *string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

// StatusChange patches an existing dispute. Nil fields are left untouched.
type StatusChange struct {
	DisputeID  string
	Status     *string
	Outcome    *string
	ResolvedAt *time.Time
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolved, StatusRejected:
		return true
	default:
		return false
	}
}

// Closed reports whether a dispute has reached a terminal status.
func Closed(s string) bool {
	return s == StatusResolved || s == StatusRejected
}
