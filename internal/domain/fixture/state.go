package fixture

import "github.com/riskibarqy/frameleague/internal/domain/matchevent"

// DeriveState folds a fixture's ledger, ordered by revision, into its
// lifecycle state. The cached projection on the fixture row must always
// agree with this derivation.
func DeriveState(events []matchevent.MatchEvent) string {
	state := StateScheduled
	for _, ev := range events {
		state = applyEvent(state, ev.Type)
	}
	return state
}

func applyEvent(state string, eventType matchevent.EventType) string {
	if state == StateLocked {
		// Locked fixtures accept no further transitions; admin overrides
		// land before the lock, not after.
		return state
	}

	switch eventType {
	case matchevent.TypeResultSubmitted:
		return StateAwaitingOpponent
	case matchevent.TypeResultRejected:
		return StateDisputed
	case matchevent.TypeMatchCompleted, matchevent.TypeDisputeResolved:
		return StateLocked
	case matchevent.TypeFrameRecorded:
		if state == StateScheduled {
			return StateInProgress
		}
		return state
	default:
		// Review requests, approvals, token events and post-hoc dispute
		// openings carry no state transition of their own.
		return state
	}
}

// CanSubmit reports whether a result submission is allowed from the state.
func CanSubmit(state string) bool {
	switch NormalizeState(state) {
	case StateScheduled, StateInProgress:
		return true
	default:
		return false
	}
}

// CanReview reports whether approve/reject is allowed from the state.
func CanReview(state string) bool {
	return NormalizeState(state) == StateAwaitingOpponent
}
