package matchevent

import "math"

// Payload is the free-form JSON body of an event. Keys used by the
// aggregator and review flow are fixed: "home_frames" and "away_frames" on
// MATCH_COMPLETED, "submitting_team_id" on RESULT_SUBMITTED.
type Payload map[string]any

const (
	KeyHomeFrames       = "home_frames"
	KeyAwayFrames       = "away_frames"
	KeySubmittingTeamID = "submitting_team_id"
	KeyApprovingTeamID  = "approving_team_id"
	KeyRejectingTeamID  = "rejecting_team_id"
	KeyTeamID           = "team_id"
	KeyHolderPlayerID   = "holder_player_id"
	KeyFromPlayerID     = "from_player_id"
	KeyToPlayerID       = "to_player_id"
	KeyPlayerID         = "player_id"
	KeyDisputeID        = "dispute_id"
	KeyReason           = "reason"
	KeyOutcome          = "outcome"
)

func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// Int reads a numeric value clamped to a non-negative integer. Missing keys,
// non-numeric values, negatives, NaN and infinities all read as 0.
func (p Payload) Int(key string) int {
	if p == nil {
		return 0
	}
	return ToNonNegativeInt(p[key])
}

func ToNonNegativeInt(v any) int {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0
		}
		return n
	case int64:
		if n < 0 {
			return 0
		}
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return 0
		}
		return int(math.Floor(n))
	case float32:
		return ToNonNegativeInt(float64(n))
	default:
		return 0
	}
}

func ResultSubmittedPayload(submittingTeamID string, homeFrames, awayFrames int) Payload {
	return Payload{
		KeySubmittingTeamID: submittingTeamID,
		KeyHomeFrames:       ToNonNegativeInt(homeFrames),
		KeyAwayFrames:       ToNonNegativeInt(awayFrames),
	}
}

func OpponentReviewRequestedPayload(submittingTeamID string) Payload {
	return Payload{KeySubmittingTeamID: submittingTeamID}
}

func ResultApprovedPayload(submittingTeamID, approvingTeamID string) Payload {
	return Payload{
		KeySubmittingTeamID: submittingTeamID,
		KeyApprovingTeamID:  approvingTeamID,
	}
}

func ResultRejectedPayload(submittingTeamID, rejectingTeamID, reason string) Payload {
	return Payload{
		KeySubmittingTeamID: submittingTeamID,
		KeyRejectingTeamID:  rejectingTeamID,
		KeyReason:           reason,
	}
}

func MatchCompletedPayload(homeFrames, awayFrames int) Payload {
	return Payload{
		KeyHomeFrames: ToNonNegativeInt(homeFrames),
		KeyAwayFrames: ToNonNegativeInt(awayFrames),
	}
}

func DisputeOpenedPayload(disputeID, reason string) Payload {
	return Payload{
		KeyDisputeID: disputeID,
		KeyReason:    reason,
	}
}

func DisputeResolvedPayload(disputeID string, outcome *string) Payload {
	p := Payload{KeyDisputeID: disputeID}
	if outcome != nil {
		p[KeyOutcome] = *outcome
	}
	return p
}

func TokenIssuedPayload(teamID, holderPlayerID string) Payload {
	return Payload{
		KeyTeamID:         teamID,
		KeyHolderPlayerID: holderPlayerID,
	}
}

func TokenTransferredPayload(teamID, fromPlayerID, toPlayerID string) Payload {
	return Payload{
		KeyTeamID:       teamID,
		KeyFromPlayerID: fromPlayerID,
		KeyToPlayerID:   toPlayerID,
	}
}

func TokenAcceptedPayload(teamID, playerID string) Payload {
	return Payload{
		KeyTeamID:   teamID,
		KeyPlayerID: playerID,
	}
}

func AdminLockOverridePayload(reason string) Payload {
	return Payload{KeyReason: reason}
}
