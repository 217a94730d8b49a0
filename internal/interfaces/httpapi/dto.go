package httpapi

import (
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	"github.com/riskibarqy/frameleague/internal/usecase"
)

type fixtureDTO struct {
	ID          string    `json:"id"`
	DivisionID  string    `json:"division_id"`
	HomeTeamID  string    `json:"home_team_id"`
	AwayTeamID  string    `json:"away_team_id"`
	Sport       string    `json:"sport"`
	State       string    `json:"state"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		ID:          f.ID,
		DivisionID:  f.DivisionID,
		HomeTeamID:  f.HomeTeamID,
		AwayTeamID:  f.AwayTeamID,
		Sport:       f.Sport,
		State:       f.State,
		Status:      f.Status,
		ScheduledAt: f.ScheduledAt,
	}
}

type matchEventDTO struct {
	ID          string            `json:"id"`
	FixtureID   string            `json:"fixture_id"`
	Type        string            `json:"type"`
	Revision    int64             `json:"revision"`
	Payload     matchevent.Payload `json:"payload"`
	ActorUserID string            `json:"actor_user_id"`
	CreatedAt   time.Time         `json:"created_at"`
}

func matchEventToDTO(e matchevent.MatchEvent) matchEventDTO {
	return matchEventDTO{
		ID:          e.ID,
		FixtureID:   e.FixtureID,
		Type:        string(e.Type),
		Revision:    e.Revision,
		Payload:     e.Payload,
		ActorUserID: e.ActorUserID,
		CreatedAt:   e.CreatedAt,
	}
}

func matchEventsToDTOs(events []matchevent.MatchEvent) []matchEventDTO {
	items := make([]matchEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, matchEventToDTO(e))
	}
	return items
}

type controlTokenDTO struct {
	ID             string     `json:"id"`
	FixtureID      string     `json:"fixture_id"`
	TeamID         string     `json:"team_id"`
	HolderPlayerID string     `json:"holder_player_id"`
	IssuedAt       time.Time  `json:"issued_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	Active         bool       `json:"active"`
	Accepted       bool       `json:"accepted"`
}

func controlTokenToDTO(t matchtoken.ControlToken) controlTokenDTO {
	return controlTokenDTO{
		ID:             t.ID,
		FixtureID:      t.FixtureID,
		TeamID:         t.TeamID,
		HolderPlayerID: t.HolderPlayerID,
		IssuedAt:       t.IssuedAt,
		AcceptedAt:     t.AcceptedAt,
		RevokedAt:      t.RevokedAt,
		Active:         t.Active(),
		Accepted:       t.Accepted(),
	}
}

type disputeDTO struct {
	ID             string     `json:"id"`
	FixtureID      string     `json:"fixture_id"`
	RaisedByTeamID string     `json:"raised_by_team_id"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	Outcome        *string    `json:"outcome,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func disputeToDTO(d dispute.Dispute) disputeDTO {
	return disputeDTO{
		ID:             d.ID,
		FixtureID:      d.FixtureID,
		RaisedByTeamID: d.RaisedByTeamID,
		Reason:         d.Reason,
		Status:         d.Status,
		Outcome:        d.Outcome,
		CreatedAt:      d.CreatedAt,
		ResolvedAt:     d.ResolvedAt,
	}
}

type standingsSnapshotDTO struct {
	ID          string               `json:"id"`
	DivisionID  string               `json:"division_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	PointsModel standings.PointsModel `json:"points_model"`
	Rows        []standings.Row      `json:"rows"`
}

func standingsSnapshotToDTO(s standings.Snapshot) standingsSnapshotDTO {
	return standingsSnapshotDTO{
		ID:          s.ID,
		DivisionID:  s.DivisionID,
		GeneratedAt: s.GeneratedAt,
		PointsModel: s.PointsModel,
		Rows:        s.Rows,
	}
}

type appendResultDTO struct {
	Events []matchEventDTO `json:"events"`
}

type recomputeAllDTO = usecase.RecomputeAllResult

type submitResultRequest struct {
	TeamID           string `json:"team_id" validate:"required"`
	ActorPlayerID    string `json:"actor_player_id" validate:"required"`
	HomeFrames       int    `json:"home_frames" validate:"min=0"`
	AwayFrames       int    `json:"away_frames" validate:"min=0"`
	ExpectedRevision int64  `json:"expected_revision" validate:"min=0"`
}

type reviewResultRequest struct {
	TeamID           string `json:"team_id" validate:"required"`
	ActorPlayerID    string `json:"actor_player_id" validate:"required"`
	Reason           string `json:"reason" validate:"omitempty,min=3,max=500"`
	ExpectedRevision int64  `json:"expected_revision" validate:"min=0"`
}

type completeOverrideRequest struct {
	HomeFrames       int    `json:"home_frames" validate:"min=0"`
	AwayFrames       int    `json:"away_frames" validate:"min=0"`
	Reason           string `json:"reason" validate:"required,min=3,max=500"`
	ExpectedRevision int64  `json:"expected_revision" validate:"min=0"`
}

type appendEventRequest struct {
	Type             string             `json:"type" validate:"required"`
	Payload          matchevent.Payload `json:"payload" validate:"omitempty"`
	TeamID           string             `json:"team_id" validate:"omitempty"`
	ActorPlayerID    string             `json:"actor_player_id" validate:"omitempty"`
	ExpectedRevision int64              `json:"expected_revision" validate:"min=0"`
}

type issueTokenRequest struct {
	TeamID         string `json:"team_id" validate:"required"`
	HolderPlayerID string `json:"holder_player_id" validate:"required"`
}

type transferTokenRequest struct {
	TeamID        string `json:"team_id" validate:"required"`
	ActorPlayerID string `json:"actor_player_id" validate:"required"`
	ToPlayerID    string `json:"to_player_id" validate:"required"`
}

type acceptTokenRequest struct {
	TeamID   string `json:"team_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type openDisputeRequest struct {
	TeamID        string `json:"team_id" validate:"required"`
	ActorPlayerID string `json:"actor_player_id" validate:"required"`
	Reason        string `json:"reason" validate:"required,min=3,max=500"`
}

type resolveDisputeRequest struct {
	Status  string `json:"status" validate:"required,oneof=under_review resolved rejected"`
	Outcome string `json:"outcome" validate:"omitempty,max=500"`
}
