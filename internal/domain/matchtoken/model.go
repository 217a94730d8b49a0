package matchtoken

import "time"

// ControlToken authorizes one player per team to submit and review results
// for a single fixture. At most one token per (fixture, team) may be active,
// meaning RevokedAt is nil. A token counts for writes only once accepted.
type ControlToken struct {
	ID             string
	FixtureID      string
	TeamID         string
	HolderPlayerID string
	IssuedAt       time.Time
	AcceptedAt     *time.Time
	RevokedAt      *time.Time
}

func (t ControlToken) Active() bool {
	return t.RevokedAt == nil
}

func (t ControlToken) Accepted() bool {
	return t.RevokedAt == nil && t.AcceptedAt != nil
}
