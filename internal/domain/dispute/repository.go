package dispute

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Dispute, bool, error)
	ListByFixture(ctx context.Context, fixtureID string) ([]Dispute, error)
	// Update patches a dispute without touching the ledger. Status changes
	// that carry ledger side effects ride MatchEventRepository.Append instead.
	Update(ctx context.Context, change StatusChange) error
}
