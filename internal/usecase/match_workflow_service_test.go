package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/domain/user"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

const (
	testOrgID      = "org-1"
	testDivisionID = "div-1"
	testFixtureID  = "fx-1"
	testHomeTeamID = "team-home"
	testAwayTeamID = "team-away"
)

type workflowHarness struct {
	fixtures  *stubFixtureRepo
	events    *stubEventRepo
	tokens    *stubTokenRepo
	teams     *stubTeamRepo
	disputes  *stubDisputeRepo
	snapshots *stubSnapshotRepo
	notifier  *stubNotifier
	service   *MatchWorkflowService
}

func newWorkflowHarness(t *testing.T, state string) *workflowHarness {
	t.Helper()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{{
		ID:         testFixtureID,
		OrgID:      testOrgID,
		DivisionID: testDivisionID,
		HomeTeamID: testHomeTeamID,
		AwayTeamID: testAwayTeamID,
		Sport:      fixture.SportPool,
		State:      state,
		Status:     fixture.StatusForState(state),
	}}}
	teams := &stubTeamRepo{
		teams: map[string]team.Team{
			testHomeTeamID: {ID: testHomeTeamID, OrgID: testOrgID, DivisionID: testDivisionID, Name: "Cue Crew"},
			testAwayTeamID: {ID: testAwayTeamID, OrgID: testOrgID, DivisionID: testDivisionID, Name: "Break Room"},
		},
		roster: map[string]bool{
			rosterKey(testHomeTeamID, "p-home"): true,
			rosterKey(testAwayTeamID, "p-away"): true,
		},
	}
	tokens := &stubTokenRepo{}
	disputes := &stubDisputeRepo{}
	events := &stubEventRepo{fixtures: fixtures, tokens: tokens, disputes: disputes}
	snapshots := &stubSnapshotRepo{}
	notifier := &stubNotifier{}

	divisions := &stubDivisionRepo{divisions: map[string]division.Division{
		testDivisionID: {ID: testDivisionID, OrgID: testOrgID, Name: "Division One"},
	}}
	standingsService := NewStandingsService(divisions, teams, fixtures, events, &stubRulesetRepo{}, snapshots, &stubIDGenerator{}, logging.NewNop())

	service := NewMatchWorkflowService(fixtures, events, teams, tokens, standingsService, notifier, &stubIDGenerator{}, logging.NewNop())

	return &workflowHarness{
		fixtures:  fixtures,
		events:    events,
		tokens:    tokens,
		teams:     teams,
		disputes:  disputes,
		snapshots: snapshots,
		notifier:  notifier,
		service:   service,
	}
}

func (h *workflowHarness) grantAcceptedToken(teamID, playerID string) {
	now := time.Now().UTC()
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-" + teamID,
		FixtureID:      testFixtureID,
		TeamID:         teamID,
		HolderPlayerID: playerID,
		IssuedAt:       now,
		AcceptedAt:     &now,
	})
}

func captainPrincipal(playerID string) user.Principal {
	return user.Principal{UserID: playerID, Role: user.RoleCaptain, OrgID: testOrgID}
}

func organiserPrincipal() user.Principal {
	return user.Principal{UserID: "u-admin", Role: user.RoleOrgAdmin, OrgID: testOrgID}
}

func TestMatchWorkflowService_SubmitResult(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")

	events, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		HomeFrames:    7,
		AwayFrames:    3,
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != matchevent.TypeResultSubmitted || events[0].Revision != 1 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Type != matchevent.TypeOpponentReviewRequested || events[1].Revision != 2 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if got := events[0].Payload.Int(matchevent.KeyHomeFrames); got != 7 {
		t.Fatalf("expected home_frames=7, got %d", got)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateAwaitingOpponent {
		t.Fatalf("expected fixture state %s, got %s", fixture.StateAwaitingOpponent, f.State)
	}
}

func TestMatchWorkflowService_SubmitResult_RevisionMismatch(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")

	_, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		TeamID:           testHomeTeamID,
		ActorPlayerID:    "p-home",
		HomeFrames:       7,
		AwayFrames:       3,
		ExpectedRevision: 5,
	})

	var mismatch *matchevent.RevisionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected revision mismatch, got %v", err)
	}
	if mismatch.Expected != 5 || mismatch.Actual != 0 {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}

	ledger, _ := h.events.ListByFixture(context.Background(), testFixtureID)
	if len(ledger) != 0 {
		t.Fatalf("expected no events written, got %d", len(ledger))
	}
}

func TestMatchWorkflowService_SubmitResult_OrganiserStillNeedsToken(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)

	_, err := h.service.SubmitResult(context.Background(), organiserPrincipal(), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "u-admin",
		HomeFrames:    5,
		AwayFrames:    5,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without a token, got %v", err)
	}
}

func TestMatchWorkflowService_SubmitResult_LockedFixture(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateLocked)
	h.grantAcceptedToken(testHomeTeamID, "p-home")

	_, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
	})
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestMatchWorkflowService_ApproveResult(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")
	h.grantAcceptedToken(testAwayTeamID, "p-away")

	if _, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		HomeFrames:    6,
		AwayFrames:    4,
	}); err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}

	events, err := h.service.ApproveResult(context.Background(), captainPrincipal("p-away"), ReviewResultInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		TeamID:           testAwayTeamID,
		ActorPlayerID:    "p-away",
		ExpectedRevision: 2,
	})
	if err != nil {
		t.Fatalf("ApproveResult error: %v", err)
	}
	if len(events) != 2 || events[1].Type != matchevent.TypeMatchCompleted {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[1].Payload.Int(matchevent.KeyHomeFrames) != 6 || events[1].Payload.Int(matchevent.KeyAwayFrames) != 4 {
		t.Fatalf("completed payload does not echo submitted frames: %+v", events[1].Payload)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateLocked || f.Status != fixture.StatusCompleted {
		t.Fatalf("expected locked/completed fixture, got %s/%s", f.State, f.Status)
	}

	if got := h.snapshots.count(testDivisionID); got != 1 {
		t.Fatalf("expected 1 standings snapshot after lock, got %d", got)
	}
	published := h.notifier.published()
	if len(published) != 1 || published[0].name != "result.confirmed" {
		t.Fatalf("unexpected notifications: %+v", published)
	}
}

func TestMatchWorkflowService_ApproveResult_SelfApproval(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")

	if _, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		HomeFrames:    6,
		AwayFrames:    4,
	}); err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}

	_, err := h.service.ApproveResult(context.Background(), captainPrincipal("p-home"), ReviewResultInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		TeamID:           testHomeTeamID,
		ActorPlayerID:    "p-home",
		ExpectedRevision: 2,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on self approval, got %v", err)
	}
}

func TestMatchWorkflowService_RejectResult_OpensDispute(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")
	h.grantAcceptedToken(testAwayTeamID, "p-away")

	if _, err := h.service.SubmitResult(context.Background(), captainPrincipal("p-home"), SubmitResultInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		HomeFrames:    6,
		AwayFrames:    4,
	}); err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}

	events, err := h.service.RejectResult(context.Background(), captainPrincipal("p-away"), ReviewResultInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		TeamID:           testAwayTeamID,
		ActorPlayerID:    "p-away",
		ExpectedRevision: 2,
	})
	if err != nil {
		t.Fatalf("RejectResult error: %v", err)
	}
	if len(events) != 2 || events[1].Type != matchevent.TypeDisputeOpened {
		t.Fatalf("unexpected events: %+v", events)
	}
	if got := events[0].Payload.String(matchevent.KeyReason); got != defaultRejectReason {
		t.Fatalf("expected default reject reason, got %q", got)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateDisputed {
		t.Fatalf("expected DISPUTED fixture, got %s", f.State)
	}

	disputes, _ := h.disputes.ListByFixture(context.Background(), testFixtureID)
	if len(disputes) != 1 || disputes[0].Status != "open" || disputes[0].RaisedByTeamID != testAwayTeamID {
		t.Fatalf("unexpected disputes: %+v", disputes)
	}
}

func TestMatchWorkflowService_CompleteOverride(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateDisputed)

	events, err := h.service.CompleteOverride(context.Background(), organiserPrincipal(), CompleteOverrideInput{
		OrgID:      testOrgID,
		FixtureID:  testFixtureID,
		HomeFrames: 5,
		AwayFrames: 5,
		Reason:     "Committee ruling after venue review",
	})
	if err != nil {
		t.Fatalf("CompleteOverride error: %v", err)
	}
	if len(events) != 2 || events[0].Type != matchevent.TypeMatchCompleted || events[1].Type != matchevent.TypeAdminLockOverride {
		t.Fatalf("unexpected events: %+v", events)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateLocked {
		t.Fatalf("expected LOCKED fixture, got %s", f.State)
	}
	published := h.notifier.published()
	if len(published) != 1 || published[0].name != "fixture.locked" {
		t.Fatalf("unexpected notifications: %+v", published)
	}
}

func TestMatchWorkflowService_CompleteOverride_RequiresOrganiser(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateScheduled)

	_, err := h.service.CompleteOverride(context.Background(), captainPrincipal("p-home"), CompleteOverrideInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		Reason:    "not allowed",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMatchWorkflowService_CompleteOverride_CorrectsLockedResult(t *testing.T) {
	t.Parallel()

	h := newWorkflowHarness(t, fixture.StateDisputed)

	if _, err := h.service.CompleteOverride(context.Background(), organiserPrincipal(), CompleteOverrideInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		HomeFrames:       7,
		AwayFrames:       3,
		Reason:           "Committee ruling",
		ExpectedRevision: 0,
	}); err != nil {
		t.Fatalf("first CompleteOverride error: %v", err)
	}

	// A locked fixture stays correctable: a second override with the right
	// revision appends a fresh MATCH_COMPLETED that supersedes the first.
	events, err := h.service.CompleteOverride(context.Background(), organiserPrincipal(), CompleteOverrideInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		HomeFrames:       4,
		AwayFrames:       6,
		Reason:           "Scoresheet recount after appeal",
		ExpectedRevision: 2,
	})
	if err != nil {
		t.Fatalf("second CompleteOverride error: %v", err)
	}
	if len(events) != 2 || events[0].Type != matchevent.TypeMatchCompleted {
		t.Fatalf("unexpected events: %+v", events)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateLocked {
		t.Fatalf("expected LOCKED fixture, got %s", f.State)
	}

	latest, _ := h.events.LatestCompletedByFixtures(context.Background(), []string{testFixtureID})
	completed := latest[testFixtureID]
	if completed.Payload.Int(matchevent.KeyHomeFrames) != 4 || completed.Payload.Int(matchevent.KeyAwayFrames) != 6 {
		t.Fatalf("expected corrected frames to win, got %+v", completed.Payload)
	}
}
