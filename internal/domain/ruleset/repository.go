package ruleset

import "context"

type Repository interface {
	GetByDivision(ctx context.Context, orgID, divisionID string) (Ruleset, bool, error)
}
