package matchevent

import (
	"context"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
)

// TokenEffect mutates token state in the same transaction as an append.
type TokenEffect struct {
	// RevokeTeamID revokes the active token for (fixture, team) before any
	// create, so the one-active-token invariant holds at every commit.
	RevokeTeamID string
	Create       *matchtoken.ControlToken
	// SetHolder moves an existing token to a new holder and clears its
	// acceptance.
	SetHolder *HolderChange
	// SetAccepted stamps acceptance on an existing token.
	SetAccepted *AcceptChange
}

type HolderChange struct {
	TokenID        string
	HolderPlayerID string
}

type AcceptChange struct {
	TokenID    string
	AcceptedAt time.Time
}

// Effects are side writes applied atomically with an append. Zero values
// leave the corresponding row untouched.
type Effects struct {
	FixtureState  string
	FixtureStatus string
	Token         *TokenEffect
	CreateDispute *dispute.Dispute
	UpdateDispute *dispute.StatusChange
}

type Repository interface {
	// Append inserts drafts at contiguous revisions after the fixture's
	// current one. When expected is non-nil and stale, it fails with
	// *RevisionMismatchError without writing anything. Effects are applied
	// in the same transaction.
	Append(ctx context.Context, fixtureID string, expected *int64, drafts []Draft, effects Effects) ([]MatchEvent, error)
	ListByFixture(ctx context.Context, fixtureID string) ([]MatchEvent, error)
	CurrentRevision(ctx context.Context, fixtureID string) (int64, error)
	// LatestByType returns the highest-revision event of the given type.
	LatestByType(ctx context.Context, fixtureID string, eventType EventType) (MatchEvent, bool, error)
	// LatestCompletedByFixtures returns the highest-revision MATCH_COMPLETED
	// event per fixture for the aggregator.
	LatestCompletedByFixtures(ctx context.Context, fixtureIDs []string) (map[string]MatchEvent, error)
}
