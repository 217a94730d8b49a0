package matchtoken

import "context"

type Repository interface {
	// FindActive returns the single non-revoked token for the pair, if any.
	FindActive(ctx context.Context, fixtureID, teamID string) (ControlToken, bool, error)
	// ListByFixture returns active tokens first, then revoked ones, newest
	// issued first within each group.
	ListByFixture(ctx context.Context, fixtureID string) ([]ControlToken, error)
}
