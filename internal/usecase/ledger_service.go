package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/domain/user"
	idgen "github.com/riskibarqy/frameleague/internal/platform/id"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

// LedgerService exposes the raw event ledger: generic advisory appends and
// ordered reads. Result submission and review go through
// MatchWorkflowService instead.
type LedgerService struct {
	fixtureRepo fixture.Repository
	eventRepo   matchevent.Repository
	policy      *accessPolicy
	ids         idgen.Generator
	logger      *logging.Logger
}

func NewLedgerService(
	fixtureRepo fixture.Repository,
	eventRepo matchevent.Repository,
	teamRepo team.Repository,
	tokenRepo matchtoken.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *LedgerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LedgerService{
		fixtureRepo: fixtureRepo,
		eventRepo:   eventRepo,
		policy:      newAccessPolicy(teamRepo, tokenRepo),
		ids:         ids,
		logger:      logger,
	}
}

type AppendEventInput struct {
	OrgID            string
	FixtureID        string
	Type             matchevent.EventType
	Payload          matchevent.Payload
	TeamID           string
	ActorPlayerID    string
	ExpectedRevision int64
}

// AppendEvent writes one advisory event at the expected revision. Only
// FRAME_RECORDED moves the fixture (SCHEDULED to IN_PROGRESS); everything
// else is narrative that later derivations ignore.
func (s *LedgerService) AppendEvent(ctx context.Context, principal user.Principal, input AppendEventInput) (matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.AppendEvent")
	defer span.End()

	if !matchevent.ValidType(input.Type) {
		return matchevent.MatchEvent{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, input.Type)
	}

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return matchevent.MatchEvent{}, err
	}
	if fixture.NormalizeState(f.State) == fixture.StateLocked {
		return matchevent.MatchEvent{}, fmt.Errorf("%w: fixture %s is locked", ErrInvalidStateTransition, f.ID)
	}

	if principal.IsOrganiser() {
		if err := s.policy.requireOrgMember(principal, f.OrgID); err != nil {
			return matchevent.MatchEvent{}, err
		}
	} else {
		if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
			return matchevent.MatchEvent{}, err
		}
		if _, err := s.policy.requireAcceptedToken(ctx, f.ID, input.TeamID, input.ActorPlayerID); err != nil {
			return matchevent.MatchEvent{}, err
		}
	}

	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return matchevent.MatchEvent{}, fmt.Errorf("generate event id: %w", err)
	}

	payload := input.Payload
	if payload == nil {
		payload = matchevent.Payload{}
	}

	effects := matchevent.Effects{}
	if input.Type == matchevent.TypeFrameRecorded && fixture.NormalizeState(f.State) == fixture.StateScheduled {
		effects.FixtureState = fixture.StateInProgress
		effects.FixtureStatus = fixture.StatusInProgress
	}

	events, err := s.eventRepo.Append(ctx, f.ID, &input.ExpectedRevision, []matchevent.Draft{{
		ID:          eventID,
		Type:        input.Type,
		ActorUserID: principal.UserID,
		Payload:     payload,
	}}, effects)
	if err != nil {
		return matchevent.MatchEvent{}, fmt.Errorf("append event: %w", err)
	}

	return events[0], nil
}

func (s *LedgerService) ListEvents(ctx context.Context, principal user.Principal, orgID, fixtureID string) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.ListEvents")
	defer span.End()

	f, err := s.loadFixture(ctx, orgID, fixtureID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.requireOrgMember(principal, f.OrgID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByFixture(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list fixture events: %w", err)
	}

	return events, nil
}

func (s *LedgerService) loadFixture(ctx context.Context, orgID, fixtureID string) (fixture.Fixture, error) {
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
