package postgres

import "time"

type fixtureTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	OrgID       string     `db:"org_id"`
	DivisionID  string     `db:"division_public_id"`
	HomeTeamID  string     `db:"home_team_public_id"`
	AwayTeamID  string     `db:"away_team_public_id"`
	Sport       string     `db:"sport"`
	State       string     `db:"state"`
	Status      string     `db:"status"`
	ScheduledAt time.Time  `db:"scheduled_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}
