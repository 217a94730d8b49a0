package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/domain/user"
	idgen "github.com/riskibarqy/frameleague/internal/platform/id"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

// DisputeService handles escalations outside the normal review flow.
// Opening a dispute leaves the fixture where it is; moving one to resolved
// locks the fixture and triggers the same follow-up as a completed match,
// while under_review and rejected touch nothing but the dispute itself.
type DisputeService struct {
	fixtureRepo fixture.Repository
	eventRepo   matchevent.Repository
	disputeRepo dispute.Repository
	policy      *accessPolicy
	ids         idgen.Generator
	followUp    *lockFollowUp
	logger      *logging.Logger
}

func NewDisputeService(
	fixtureRepo fixture.Repository,
	eventRepo matchevent.Repository,
	disputeRepo dispute.Repository,
	teamRepo team.Repository,
	tokenRepo matchtoken.Repository,
	standingsService *StandingsService,
	notifier EventNotifier,
	ids idgen.Generator,
	logger *logging.Logger,
) *DisputeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DisputeService{
		fixtureRepo: fixtureRepo,
		eventRepo:   eventRepo,
		disputeRepo: disputeRepo,
		policy:      newAccessPolicy(teamRepo, tokenRepo),
		ids:         ids,
		followUp: &lockFollowUp{
			standings: standingsService,
			notifier:  notifier,
			logger:    logger,
		},
		logger: logger,
	}
}

type OpenDisputeInput struct {
	OrgID         string
	FixtureID     string
	TeamID        string
	ActorPlayerID string
	Reason        string
}

// Open raises a dispute against a fixture. Any state is fair game, locked
// fixtures included: a post-hoc dispute is the only path back into a locked
// outcome. Opening never moves the lifecycle.
func (s *DisputeService) Open(ctx context.Context, principal user.Principal, input OpenDisputeInput) (dispute.Dispute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisputeService.Open")
	defer span.End()

	input.Reason = strings.TrimSpace(input.Reason)
	if input.Reason == "" {
		return dispute.Dispute{}, fmt.Errorf("%w: dispute reason is required", ErrInvalidInput)
	}

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return dispute.Dispute{}, err
	}

	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
		return dispute.Dispute{}, err
	}
	if !principal.IsOrganiser() {
		if _, err := s.policy.requireAcceptedToken(ctx, f.ID, input.TeamID, input.ActorPlayerID); err != nil {
			return dispute.Dispute{}, err
		}
	}

	disputeID, err := s.ids.NewID("d")
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("generate dispute id: %w", err)
	}
	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("generate event id: %w", err)
	}

	d := dispute.Dispute{
		ID:             disputeID,
		FixtureID:      f.ID,
		RaisedByTeamID: input.TeamID,
		Reason:         input.Reason,
		Status:         dispute.StatusOpen,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = s.eventRepo.Append(ctx, f.ID, nil, []matchevent.Draft{{
		ID:          eventID,
		Type:        matchevent.TypeDisputeOpened,
		ActorUserID: principal.UserID,
		Payload:     matchevent.DisputeOpenedPayload(d.ID, d.Reason),
	}}, matchevent.Effects{
		CreateDispute: &d,
	})
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("open dispute: %w", err)
	}

	s.logger.InfoContext(ctx, "dispute opened",
		"fixture_id", f.ID,
		"dispute_id", d.ID,
		"raised_by_team_id", input.TeamID,
	)

	return d, nil
}

type ResolveDisputeInput struct {
	OrgID     string
	FixtureID string
	DisputeID string
	Status    string
	Outcome   string
}

// Resolve moves a dispute to a new status. Only the resolved status carries
// side effects: it appends DISPUTE_RESOLVED, locks the fixture and recomputes
// the division standings. Any other transition just patches the dispute.
func (s *DisputeService) Resolve(ctx context.Context, principal user.Principal, input ResolveDisputeInput) (dispute.Dispute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisputeService.Resolve")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return dispute.Dispute{}, err
	}
	if err := s.policy.requireOrganiser(principal, f.OrgID); err != nil {
		return dispute.Dispute{}, err
	}

	input.Status = strings.TrimSpace(input.Status)
	if input.Status == dispute.StatusOpen || !dispute.ValidStatus(input.Status) {
		return dispute.Dispute{}, fmt.Errorf("%w: resolution status must be %s, %s or %s", ErrInvalidInput, dispute.StatusUnderReview, dispute.StatusResolved, dispute.StatusRejected)
	}

	d, exists, err := s.disputeRepo.GetByID(ctx, input.DisputeID)
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("get dispute: %w", err)
	}
	if !exists || d.FixtureID != f.ID {
		return dispute.Dispute{}, fmt.Errorf("%w: dispute=%s", ErrNotFound, input.DisputeID)
	}
	if dispute.Closed(d.Status) {
		return dispute.Dispute{}, fmt.Errorf("%w: dispute %s is already %s", ErrInvalidStateTransition, d.ID, d.Status)
	}

	status := input.Status
	var outcome *string
	if trimmed := strings.TrimSpace(input.Outcome); trimmed != "" {
		outcome = &trimmed
	}

	if status != dispute.StatusResolved {
		if err := s.disputeRepo.Update(ctx, dispute.StatusChange{
			DisputeID: d.ID,
			Status:    &status,
			Outcome:   outcome,
		}); err != nil {
			return dispute.Dispute{}, fmt.Errorf("update dispute: %w", err)
		}

		d.Status = status
		if outcome != nil {
			d.Outcome = outcome
		}

		s.logger.InfoContext(ctx, "dispute updated",
			"fixture_id", f.ID,
			"dispute_id", d.ID,
			"status", status,
		)

		return d, nil
	}

	eventID, err := s.ids.NewID("ev")
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("generate event id: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.eventRepo.Append(ctx, f.ID, nil, []matchevent.Draft{{
		ID:          eventID,
		Type:        matchevent.TypeDisputeResolved,
		ActorUserID: principal.UserID,
		Payload:     matchevent.DisputeResolvedPayload(d.ID, outcome),
	}}, matchevent.Effects{
		FixtureState:  fixture.StateLocked,
		FixtureStatus: fixture.StatusCompleted,
		UpdateDispute: &dispute.StatusChange{
			DisputeID:  d.ID,
			Status:     &status,
			Outcome:    outcome,
			ResolvedAt: &now,
		},
	})
	if err != nil {
		return dispute.Dispute{}, fmt.Errorf("resolve dispute: %w", err)
	}

	d.Status = status
	d.Outcome = outcome
	d.ResolvedAt = &now

	s.logger.InfoContext(ctx, "dispute resolved",
		"fixture_id", f.ID,
		"dispute_id", d.ID,
		"status", status,
	)

	s.followUp.run(ctx, f, "fixture.locked", map[string]any{
		"fixture_id": f.ID,
		"dispute_id": d.ID,
		"status":     status,
	})

	return d, nil
}

func (s *DisputeService) ListByFixture(ctx context.Context, principal user.Principal, orgID, fixtureID string) ([]dispute.Dispute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisputeService.ListByFixture")
	defer span.End()

	f, err := s.loadFixture(ctx, orgID, fixtureID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.requireOrgMember(principal, f.OrgID); err != nil {
		return nil, err
	}

	disputes, err := s.disputeRepo.ListByFixture(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}

	return disputes, nil
}

func (s *DisputeService) loadFixture(ctx context.Context, orgID, fixtureID string) (fixture.Fixture, error) {
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
