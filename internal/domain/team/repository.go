package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, orgID, teamID string) (Team, bool, error)
	// ListByDivision returns teams ordered by name for deterministic
	// aggregation.
	ListByDivision(ctx context.Context, orgID, divisionID string) ([]Team, error)
	// IsPlayerOnRoster reports whether the player has a roster entry for the
	// team within the org.
	IsPlayerOnRoster(ctx context.Context, orgID, teamID, playerID string) (bool, error)
}
