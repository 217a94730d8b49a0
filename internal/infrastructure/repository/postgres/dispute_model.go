package postgres

import (
	"database/sql"
	"time"
)

type disputeTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	FixtureID      string         `db:"fixture_public_id"`
	RaisedByTeamID string         `db:"raised_by_team_public_id"`
	Reason         string         `db:"reason"`
	Status         string         `db:"status"`
	Outcome        sql.NullString `db:"outcome"`
	CreatedAt      time.Time      `db:"created_at"`
	ResolvedAt     sql.NullTime   `db:"resolved_at"`
}

type disputeInsertModel struct {
	PublicID       string    `db:"public_id"`
	FixtureID      string    `db:"fixture_public_id"`
	RaisedByTeamID string    `db:"raised_by_team_public_id"`
	Reason         string    `db:"reason"`
	Status         string    `db:"status"`
	Outcome        *string   `db:"outcome"`
	CreatedAt      time.Time `db:"created_at"`
}
