package postgres

import (
	"database/sql"
	"time"
)

type controlTokenTableModel struct {
	ID             int64        `db:"id"`
	PublicID       string       `db:"public_id"`
	FixtureID      string       `db:"fixture_public_id"`
	TeamID         string       `db:"team_public_id"`
	HolderPlayerID string       `db:"holder_player_id"`
	IssuedAt       time.Time    `db:"issued_at"`
	AcceptedAt     sql.NullTime `db:"accepted_at"`
	RevokedAt      sql.NullTime `db:"revoked_at"`
}

type controlTokenInsertModel struct {
	PublicID       string     `db:"public_id"`
	FixtureID      string     `db:"fixture_public_id"`
	TeamID         string     `db:"team_public_id"`
	HolderPlayerID string     `db:"holder_player_id"`
	IssuedAt       time.Time  `db:"issued_at"`
	AcceptedAt     *time.Time `db:"accepted_at"`
}
