package matchevent

import (
	"fmt"
	"time"
)

// EventType enumerates the ledger vocabulary. The ledger is append-only:
// events are never updated or deleted once written.
type EventType string

const (
	TypeResultSubmitted         EventType = "RESULT_SUBMITTED"
	TypeOpponentReviewRequested EventType = "OPPONENT_REVIEW_REQUESTED"
	TypeResultApproved          EventType = "RESULT_APPROVED"
	TypeResultRejected          EventType = "RESULT_REJECTED"
	TypeMatchCompleted          EventType = "MATCH_COMPLETED"
	TypeDisputeOpened           EventType = "DISPUTE_OPENED"
	TypeDisputeResolved         EventType = "DISPUTE_RESOLVED"
	TypeTokenIssued             EventType = "TOKEN_ISSUED"
	TypeTokenTransferred        EventType = "TOKEN_TRANSFERRED"
	TypeTokenAccepted           EventType = "TOKEN_ACCEPTED"
	TypeAdminLockOverride       EventType = "ADMIN_LOCK_OVERRIDE"
	TypeFrameRecorded           EventType = "FRAME_RECORDED"
)

func ValidType(t EventType) bool {
	switch t {
	case TypeResultSubmitted, TypeOpponentReviewRequested, TypeResultApproved,
		TypeResultRejected, TypeMatchCompleted, TypeDisputeOpened,
		TypeDisputeResolved, TypeTokenIssued, TypeTokenTransferred,
		TypeTokenAccepted, TypeAdminLockOverride, TypeFrameRecorded:
		return true
	default:
		return false
	}
}

// MatchEvent is one entry in a fixture's ledger. Revisions are dense and
// start at 1 for the first event of a fixture.
type MatchEvent struct {
	ID          string
	FixtureID   string
	Type        EventType
	Revision    int64
	Payload     Payload
	ActorUserID string
	CreatedAt   time.Time
}

// Draft is an event prepared in a usecase before it gets a revision. IDs are
// generated up front so payloads can reference sibling records created in
// the same transaction.
type Draft struct {
	ID          string
	Type        EventType
	ActorUserID string
	Payload     Payload
}

// RevisionMismatchError reports a failed optimistic concurrency check.
// Actual carries the fixture's true current revision so callers can re-read
// and retry.
type RevisionMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *RevisionMismatchError) Error() string {
	return fmt.Sprintf("revision mismatch: expected %d, current is %d", e.Expected, e.Actual)
}
