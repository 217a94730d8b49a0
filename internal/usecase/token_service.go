package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/domain/user"
	idgen "github.com/riskibarqy/frameleague/internal/platform/id"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

// TokenService manages the delegable control tokens that gate result
// writes. Token mutations append their ledger event and the token row in
// one transaction; the append carries no expected revision because token
// handovers do not race with result writes.
type TokenService struct {
	fixtureRepo fixture.Repository
	eventRepo   matchevent.Repository
	tokenRepo   matchtoken.Repository
	teamRepo    team.Repository
	policy      *accessPolicy
	ids         idgen.Generator
	logger      *logging.Logger
}

func NewTokenService(
	fixtureRepo fixture.Repository,
	eventRepo matchevent.Repository,
	tokenRepo matchtoken.Repository,
	teamRepo team.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *TokenService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TokenService{
		fixtureRepo: fixtureRepo,
		eventRepo:   eventRepo,
		tokenRepo:   tokenRepo,
		teamRepo:    teamRepo,
		policy:      newAccessPolicy(teamRepo, tokenRepo),
		ids:         ids,
		logger:      logger,
	}
}

type IssueTokenInput struct {
	OrgID          string
	FixtureID      string
	TeamID         string
	HolderPlayerID string
}

// Issue hands a fresh, pre-accepted token to the named holder. Any active
// token for the pair is revoked in the same transaction, so the one-active
// invariant holds at every commit.
func (s *TokenService) Issue(ctx context.Context, principal user.Principal, input IssueTokenInput) (matchtoken.ControlToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.Issue")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return matchtoken.ControlToken{}, err
	}
	if err := s.policy.requireOrganiser(principal, f.OrgID); err != nil {
		return matchtoken.ControlToken{}, err
	}
	if !f.HasTeam(input.TeamID) {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: team %s does not play in fixture %s", ErrInvalidInput, input.TeamID, f.ID)
	}

	onRoster, err := s.teamRepo.IsPlayerOnRoster(ctx, f.OrgID, input.TeamID, input.HolderPlayerID)
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("check roster: %w", err)
	}
	if !onRoster {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: player %s is not on team %s roster", ErrInvalidInput, input.HolderPlayerID, input.TeamID)
	}

	tokenID, err := s.ids.NewID("tok")
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("generate token id: %w", err)
	}
	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("generate event id: %w", err)
	}

	now := time.Now().UTC()
	token := matchtoken.ControlToken{
		ID:             tokenID,
		FixtureID:      f.ID,
		TeamID:         input.TeamID,
		HolderPlayerID: input.HolderPlayerID,
		IssuedAt:       now,
		AcceptedAt:     &now,
	}

	_, err = s.eventRepo.Append(ctx, f.ID, nil, []matchevent.Draft{{
		ID:          eventID,
		Type:        matchevent.TypeTokenIssued,
		ActorUserID: principal.UserID,
		Payload:     matchevent.TokenIssuedPayload(input.TeamID, input.HolderPlayerID),
	}}, matchevent.Effects{
		Token: &matchevent.TokenEffect{
			RevokeTeamID: input.TeamID,
			Create:       &token,
		},
	})
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "control token issued",
		"fixture_id", f.ID,
		"team_id", input.TeamID,
		"holder_player_id", input.HolderPlayerID,
	)

	return token, nil
}

type TransferTokenInput struct {
	OrgID         string
	FixtureID     string
	TeamID        string
	ActorPlayerID string
	ToPlayerID    string
}

// Transfer moves the active token to a teammate. The new holder must accept
// before the token authorizes writes again.
func (s *TokenService) Transfer(ctx context.Context, principal user.Principal, input TransferTokenInput) (matchtoken.ControlToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.Transfer")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return matchtoken.ControlToken{}, err
	}
	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
		return matchtoken.ControlToken{}, err
	}

	token, exists, err := s.tokenRepo.FindActive(ctx, f.ID, input.TeamID)
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("find active token: %w", err)
	}
	if !exists {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: team %s holds no active control token for fixture %s", ErrNotFound, input.TeamID, f.ID)
	}
	if token.HolderPlayerID != input.ActorPlayerID {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: only the current holder may transfer the token", ErrForbidden)
	}
	if input.ToPlayerID == token.HolderPlayerID {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: token is already held by player %s", ErrInvalidInput, input.ToPlayerID)
	}

	onRoster, err := s.teamRepo.IsPlayerOnRoster(ctx, f.OrgID, input.TeamID, input.ToPlayerID)
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("check roster: %w", err)
	}
	if !onRoster {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: player %s is not on team %s roster", ErrInvalidInput, input.ToPlayerID, input.TeamID)
	}

	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("generate event id: %w", err)
	}

	_, err = s.eventRepo.Append(ctx, f.ID, nil, []matchevent.Draft{{
		ID:          eventID,
		Type:        matchevent.TypeTokenTransferred,
		ActorUserID: principal.UserID,
		Payload:     matchevent.TokenTransferredPayload(input.TeamID, input.ActorPlayerID, input.ToPlayerID),
	}}, matchevent.Effects{
		Token: &matchevent.TokenEffect{
			SetHolder: &matchevent.HolderChange{
				TokenID:        token.ID,
				HolderPlayerID: input.ToPlayerID,
			},
		},
	})
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("transfer token: %w", err)
	}

	token.HolderPlayerID = input.ToPlayerID
	token.AcceptedAt = nil

	s.logger.InfoContext(ctx, "control token transferred",
		"fixture_id", f.ID,
		"team_id", input.TeamID,
		"from_player_id", input.ActorPlayerID,
		"to_player_id", input.ToPlayerID,
	)

	return token, nil
}

type AcceptTokenInput struct {
	OrgID     string
	FixtureID string
	TeamID    string
	PlayerID  string
}

// Accept stamps the pending handover. Only the named holder may accept.
func (s *TokenService) Accept(ctx context.Context, principal user.Principal, input AcceptTokenInput) (matchtoken.ControlToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.Accept")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return matchtoken.ControlToken{}, err
	}
	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.PlayerID); err != nil {
		return matchtoken.ControlToken{}, err
	}

	token, exists, err := s.tokenRepo.FindActive(ctx, f.ID, input.TeamID)
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("find active token: %w", err)
	}
	if !exists {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: team %s holds no active control token for fixture %s", ErrNotFound, input.TeamID, f.ID)
	}
	if token.HolderPlayerID != input.PlayerID {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: only the named holder may accept the token", ErrForbidden)
	}
	if token.AcceptedAt != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: token has already been accepted", ErrInvalidInput)
	}

	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("generate event id: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.eventRepo.Append(ctx, f.ID, nil, []matchevent.Draft{{
		ID:          eventID,
		Type:        matchevent.TypeTokenAccepted,
		ActorUserID: principal.UserID,
		Payload:     matchevent.TokenAcceptedPayload(input.TeamID, input.PlayerID),
	}}, matchevent.Effects{
		Token: &matchevent.TokenEffect{
			SetAccepted: &matchevent.AcceptChange{
				TokenID:    token.ID,
				AcceptedAt: now,
			},
		},
	})
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("accept token: %w", err)
	}

	token.AcceptedAt = &now

	s.logger.InfoContext(ctx, "control token accepted",
		"fixture_id", f.ID,
		"team_id", input.TeamID,
		"player_id", input.PlayerID,
	)

	return token, nil
}

func (s *TokenService) ListByFixture(ctx context.Context, principal user.Principal, orgID, fixtureID string) ([]matchtoken.ControlToken, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.ListByFixture")
	defer span.End()

	f, err := s.loadFixture(ctx, orgID, fixtureID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.requireOrgMember(principal, f.OrgID); err != nil {
		return nil, err
	}

	tokens, err := s.tokenRepo.ListByFixture(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	return tokens, nil
}

func (s *TokenService) loadFixture(ctx context.Context, orgID, fixtureID string) (fixture.Fixture, error) {
	orgID = strings.TrimSpace(orgID)
	fixtureID = strings.TrimSpace(fixtureID)
	if orgID == "" || fixtureID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: org id and fixture id are required", ErrInvalidInput)
	}

	f, exists, err := s.fixtureRepo.GetByID(ctx, orgID, fixtureID)
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("get fixture: %w", err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
	}

	return f, nil
}
