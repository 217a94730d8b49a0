package fixture

import "context"

// Repository exposes fixture reads. All lookups are org-scoped so one
// organisation can never address another's fixtures.
type Repository interface {
	GetByID(ctx context.Context, orgID, fixtureID string) (Fixture, bool, error)
	ListByDivision(ctx context.Context, orgID, divisionID string) ([]Fixture, error)
}
