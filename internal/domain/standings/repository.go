package standings

import "context"

type Repository interface {
	// CreateSnapshot appends a new immutable snapshot row.
	CreateSnapshot(ctx context.Context, snapshot Snapshot) error
	Latest(ctx context.Context, divisionID string) (Snapshot, bool, error)
	// ListByDivision returns snapshots newest first.
	ListByDivision(ctx context.Context, divisionID string) ([]Snapshot, error)
}
