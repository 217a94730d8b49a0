package postgres

import "time"

type matchEventTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	FixtureID   string    `db:"fixture_public_id"`
	EventType   string    `db:"event_type"`
	Revision    int64     `db:"revision"`
	Payload     string    `db:"payload"`
	ActorUserID string    `db:"actor_user_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type matchEventInsertModel struct {
	PublicID    string    `db:"public_id"`
	FixtureID   string    `db:"fixture_public_id"`
	EventType   string    `db:"event_type"`
	Revision    int64     `db:"revision"`
	Payload     string    `db:"payload"`
	ActorUserID string    `db:"actor_user_id"`
	CreatedAt   time.Time `db:"created_at"`
}
