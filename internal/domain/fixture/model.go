package fixture

import (
	"strings"
	"time"
)

// Lifecycle states. LOCKED is terminal for everything except reads.
const (
	StateScheduled        = "SCHEDULED"
	StateInProgress       = "IN_PROGRESS"
	StateAwaitingOpponent = "AWAITING_OPPONENT"
	StateDisputed         = "DISPUTED"
	StateLocked           = "LOCKED"
)

// Coarse status kept alongside the state for listing screens.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	SportPool  = "pool"
	SportDarts = "darts"
)

// Fixture is one head-to-head match. State and Status are a cached
// projection of the fixture's event ledger, updated in the same transaction
// as each append.
type Fixture struct {
	ID          string
	OrgID       string
	DivisionID  string
	HomeTeamID  string
	AwayTeamID  string
	Sport       string
	State       string
	Status      string
	ScheduledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (f Fixture) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == f.HomeTeamID || teamID == f.AwayTeamID)
}

func NormalizeState(value string) string {
	state := strings.ToUpper(strings.TrimSpace(value))
	if state == "" {
		return StateScheduled
	}
	return state
}

// StatusForState maps a lifecycle state to the coarse status column.
func StatusForState(state string) string {
	switch NormalizeState(state) {
	case StateScheduled:
		return StatusScheduled
	case StateLocked:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}
