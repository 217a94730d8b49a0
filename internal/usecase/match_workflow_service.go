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
	"github.com/sourcegraph/conc"
)

const defaultRejectReason = "Result rejected by opponent captain"

// MatchWorkflowService drives result submission and opponent review on top
// of the fixture ledger. Every write goes through a single optimistic
// append so concurrent writers race on the expected revision, not on rows.
type MatchWorkflowService struct {
	fixtureRepo fixture.Repository
	eventRepo   matchevent.Repository
	policy      *accessPolicy
	ids         idgen.Generator
	followUp    *lockFollowUp
	logger      *logging.Logger
}

func NewMatchWorkflowService(
	fixtureRepo fixture.Repository,
	eventRepo matchevent.Repository,
	teamRepo team.Repository,
	tokenRepo matchtoken.Repository,
	standingsService *StandingsService,
	notifier EventNotifier,
	ids idgen.Generator,
	logger *logging.Logger,
) *MatchWorkflowService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchWorkflowService{
		fixtureRepo: fixtureRepo,
		eventRepo:   eventRepo,
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

type SubmitResultInput struct {
	OrgID            string
	FixtureID        string
	TeamID           string
	ActorPlayerID    string
	HomeFrames       int
	AwayFrames       int
	ExpectedRevision int64
}

// SubmitResult records a provisional result and hands the fixture to the
// opponent for review.
func (s *MatchWorkflowService) SubmitResult(ctx context.Context, principal user.Principal, input SubmitResultInput) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchWorkflowService.SubmitResult")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return nil, err
	}
	if !fixture.CanSubmit(f.State) {
		return nil, fmt.Errorf("%w: cannot submit result while fixture is %s", ErrInvalidStateTransition, f.State)
	}

	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}
	if _, err := s.policy.requireAcceptedToken(ctx, f.ID, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}

	drafts, err := s.newDrafts(principal.UserID,
		draftSpec{matchevent.TypeResultSubmitted, matchevent.ResultSubmittedPayload(input.TeamID, input.HomeFrames, input.AwayFrames)},
		draftSpec{matchevent.TypeOpponentReviewRequested, matchevent.OpponentReviewRequestedPayload(input.TeamID)},
	)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.Append(ctx, f.ID, &input.ExpectedRevision, drafts, matchevent.Effects{
		FixtureState:  fixture.StateAwaitingOpponent,
		FixtureStatus: fixture.StatusInProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("append submitted result: %w", err)
	}

	s.logger.InfoContext(ctx, "result submitted",
		"fixture_id", f.ID,
		"team_id", input.TeamID,
		"revision", events[len(events)-1].Revision,
	)

	return events, nil
}

type ReviewResultInput struct {
	OrgID            string
	FixtureID        string
	TeamID           string
	ActorPlayerID    string
	Reason           string
	ExpectedRevision int64
}

// ApproveResult confirms the opponent's submission, locks the fixture and
// triggers standings recomputation.
func (s *MatchWorkflowService) ApproveResult(ctx context.Context, principal user.Principal, input ReviewResultInput) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchWorkflowService.ApproveResult")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return nil, err
	}
	if !fixture.CanReview(f.State) {
		return nil, fmt.Errorf("%w: no result awaiting review on fixture %s", ErrInvalidStateTransition, f.ID)
	}

	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}
	if _, err := s.policy.requireAcceptedToken(ctx, f.ID, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}

	submitted, exists, err := s.eventRepo.LatestByType(ctx, f.ID, matchevent.TypeResultSubmitted)
	if err != nil {
		return nil, fmt.Errorf("load submitted result: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: no submitted result to approve", ErrInvalidStateTransition)
	}

	submittingTeamID := submitted.Payload.String(matchevent.KeySubmittingTeamID)
	if submittingTeamID == input.TeamID {
		return nil, fmt.Errorf("%w: submitting team cannot approve its own result", ErrForbidden)
	}

	homeFrames := submitted.Payload.Int(matchevent.KeyHomeFrames)
	awayFrames := submitted.Payload.Int(matchevent.KeyAwayFrames)

	drafts, err := s.newDrafts(principal.UserID,
		draftSpec{matchevent.TypeResultApproved, matchevent.ResultApprovedPayload(submittingTeamID, input.TeamID)},
		draftSpec{matchevent.TypeMatchCompleted, matchevent.MatchCompletedPayload(homeFrames, awayFrames)},
	)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.Append(ctx, f.ID, &input.ExpectedRevision, drafts, matchevent.Effects{
		FixtureState:  fixture.StateLocked,
		FixtureStatus: fixture.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("append approved result: %w", err)
	}

	s.logger.InfoContext(ctx, "result approved",
		"fixture_id", f.ID,
		"approving_team_id", input.TeamID,
		"home_frames", homeFrames,
		"away_frames", awayFrames,
	)
	s.followUp.run(ctx, f, "result.confirmed", map[string]any{
		"fixture_id":  f.ID,
		"division_id": f.DivisionID,
		"home_frames": homeFrames,
		"away_frames": awayFrames,
	})

	return events, nil
}

// RejectResult refuses the submission and opens a dispute. The fixture
// returns to play under DISPUTED until an organiser resolves it.
func (s *MatchWorkflowService) RejectResult(ctx context.Context, principal user.Principal, input ReviewResultInput) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchWorkflowService.RejectResult")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return nil, err
	}
	if !fixture.CanReview(f.State) {
		return nil, fmt.Errorf("%w: no result awaiting review on fixture %s", ErrInvalidStateTransition, f.ID)
	}

	if err := s.policy.requireTeamActor(ctx, principal, f, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}
	if _, err := s.policy.requireAcceptedToken(ctx, f.ID, input.TeamID, input.ActorPlayerID); err != nil {
		return nil, err
	}

	submitted, exists, err := s.eventRepo.LatestByType(ctx, f.ID, matchevent.TypeResultSubmitted)
	if err != nil {
		return nil, fmt.Errorf("load submitted result: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: no submitted result to reject", ErrInvalidStateTransition)
	}
	submittingTeamID := submitted.Payload.String(matchevent.KeySubmittingTeamID)

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = defaultRejectReason
	}

	disputeID, err := s.ids.NewID("d")
	if err != nil {
		return nil, fmt.Errorf("generate dispute id: %w", err)
	}

	drafts, err := s.newDrafts(principal.UserID,
		draftSpec{matchevent.TypeResultRejected, matchevent.ResultRejectedPayload(submittingTeamID, input.TeamID, reason)},
		draftSpec{matchevent.TypeDisputeOpened, matchevent.DisputeOpenedPayload(disputeID, reason)},
	)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.Append(ctx, f.ID, &input.ExpectedRevision, drafts, matchevent.Effects{
		FixtureState:  fixture.StateDisputed,
		FixtureStatus: fixture.StatusInProgress,
		CreateDispute: &dispute.Dispute{
			ID:             disputeID,
			FixtureID:      f.ID,
			RaisedByTeamID: input.TeamID,
			Reason:         reason,
			Status:         dispute.StatusOpen,
			CreatedAt:      time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("append rejected result: %w", err)
	}

	s.logger.InfoContext(ctx, "result rejected",
		"fixture_id", f.ID,
		"rejecting_team_id", input.TeamID,
		"dispute_id", disputeID,
	)

	return events, nil
}

type CompleteOverrideInput struct {
	OrgID            string
	FixtureID        string
	HomeFrames       int
	AwayFrames       int
	Reason           string
	ExpectedRevision int64
}

// CompleteOverride lets an organiser record a final result and lock the
// fixture from any state, locked included, bypassing opponent review. The
// only gate is the expected revision: a correction to an already locked
// result appends a fresh MATCH_COMPLETED which supersedes the earlier one.
func (s *MatchWorkflowService) CompleteOverride(ctx context.Context, principal user.Principal, input CompleteOverrideInput) ([]matchevent.MatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchWorkflowService.CompleteOverride")
	defer span.End()

	f, err := s.loadFixture(ctx, input.OrgID, input.FixtureID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.requireOrganiser(principal, f.OrgID); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: override reason is required", ErrInvalidInput)
	}

	drafts, err := s.newDrafts(principal.UserID,
		draftSpec{matchevent.TypeMatchCompleted, matchevent.MatchCompletedPayload(input.HomeFrames, input.AwayFrames)},
		draftSpec{matchevent.TypeAdminLockOverride, matchevent.AdminLockOverridePayload(reason)},
	)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.Append(ctx, f.ID, &input.ExpectedRevision, drafts, matchevent.Effects{
		FixtureState:  fixture.StateLocked,
		FixtureStatus: fixture.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("append lock override: %w", err)
	}

	s.logger.InfoContext(ctx, "fixture locked by override",
		"fixture_id", f.ID,
		"actor_user_id", principal.UserID,
	)
	s.followUp.run(ctx, f, "fixture.locked", map[string]any{
		"fixture_id":  f.ID,
		"division_id": f.DivisionID,
		"home_frames": matchevent.ToNonNegativeInt(input.HomeFrames),
		"away_frames": matchevent.ToNonNegativeInt(input.AwayFrames),
		"reason":      reason,
	})

	return events, nil
}

func (s *MatchWorkflowService) loadFixture(ctx context.Context, orgID, fixtureID string) (fixture.Fixture, error) {
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

type draftSpec struct {
	eventType matchevent.EventType
	payload   matchevent.Payload
}

func (s *MatchWorkflowService) newDrafts(actorUserID string, specs ...draftSpec) ([]matchevent.Draft, error) {
	drafts := make([]matchevent.Draft, 0, len(specs))
	for _, spec := range specs {
		eventID, err := s.ids.NewID("ev")
		if err != nil {
			return nil, fmt.Errorf("generate event id: %w", err)
		}
		drafts = append(drafts, matchevent.Draft{
			ID:          eventID,
			Type:        spec.eventType,
			ActorUserID: actorUserID,
			Payload:     spec.payload,
		})
	}
	return drafts, nil
}

// lockFollowUp runs the post-commit side effects of a lock: standings
// recomputation and outbound notification. The owning transaction has
// already committed, so failures here are logged and swallowed.
type lockFollowUp struct {
	standings *StandingsService
	notifier  EventNotifier
	logger    *logging.Logger
}

func (l *lockFollowUp) run(ctx context.Context, f fixture.Fixture, event string, payload any) {
	if l == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var wg conc.WaitGroup
	if l.standings != nil {
		wg.Go(func() {
			if _, err := l.standings.Recompute(ctx, f.OrgID, f.DivisionID); err != nil {
				l.logger.WarnContext(ctx, "standings recompute after lock failed",
					"division_id", f.DivisionID,
					"fixture_id", f.ID,
					"error", err,
				)
			}
		})
	}
	if l.notifier != nil {
		wg.Go(func() {
			if err := l.notifier.Publish(ctx, event, payload); err != nil {
				l.logger.WarnContext(ctx, "notification publish failed",
					"event", event,
					"fixture_id", f.ID,
					"error", err,
				)
			}
		})
	}
	wg.Wait()
}
