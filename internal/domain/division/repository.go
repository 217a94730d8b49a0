package division

import "context"

type Repository interface {
	GetByID(ctx context.Context, orgID, divisionID string) (Division, bool, error)
	ListByOrg(ctx context.Context, orgID string) ([]Division, error)
}
