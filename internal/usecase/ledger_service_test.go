package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

type ledgerHarness struct {
	fixtures *stubFixtureRepo
	events   *stubEventRepo
	tokens   *stubTokenRepo
	service  *LedgerService
}

func newLedgerHarness(t *testing.T, state string) *ledgerHarness {
	t.Helper()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{{
		ID:         testFixtureID,
		OrgID:      testOrgID,
		DivisionID: testDivisionID,
		HomeTeamID: testHomeTeamID,
		AwayTeamID: testAwayTeamID,
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
		},
	}
	tokens := &stubTokenRepo{}
	events := &stubEventRepo{fixtures: fixtures, tokens: tokens}

	service := NewLedgerService(fixtures, events, teams, tokens, &stubIDGenerator{}, logging.NewNop())

	return &ledgerHarness{fixtures: fixtures, events: events, tokens: tokens, service: service}
}

func (h *ledgerHarness) grantAcceptedToken(teamID, playerID string) {
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

func TestLedgerService_AppendEvent_FrameRecordedStartsPlay(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateScheduled)
	h.grantAcceptedToken(testHomeTeamID, "p-home")

	event, err := h.service.AppendEvent(context.Background(), captainPrincipal("p-home"), AppendEventInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		Type:          matchevent.TypeFrameRecorded,
		Payload:       matchevent.Payload{"frame_number": 1, "winner_team_id": testHomeTeamID},
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
	})
	if err != nil {
		t.Fatalf("AppendEvent error: %v", err)
	}
	if event.Revision != 1 || event.Type != matchevent.TypeFrameRecorded {
		t.Fatalf("unexpected event: %+v", event)
	}

	f, _, _ := h.fixtures.GetByID(context.Background(), testOrgID, testFixtureID)
	if f.State != fixture.StateInProgress {
		t.Fatalf("expected IN_PROGRESS fixture, got %s", f.State)
	}

	// A second frame leaves the state alone.
	if _, err := h.service.AppendEvent(context.Background(), captainPrincipal("p-home"), AppendEventInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		Type:             matchevent.TypeFrameRecorded,
		TeamID:           testHomeTeamID,
		ActorPlayerID:    "p-home",
		ExpectedRevision: 1,
	}); err != nil {
		t.Fatalf("second AppendEvent error: %v", err)
	}
	if got := h.events.lastEffects(); got.FixtureState != "" {
		t.Fatalf("expected no state effect on second frame, got %+v", got)
	}
}

func TestLedgerService_AppendEvent_UnknownType(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateScheduled)

	_, err := h.service.AppendEvent(context.Background(), organiserPrincipal(), AppendEventInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		Type:      "SOMETHING_ELSE",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLedgerService_AppendEvent_LockedFixture(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateLocked)

	_, err := h.service.AppendEvent(context.Background(), organiserPrincipal(), AppendEventInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		Type:      matchevent.TypeFrameRecorded,
	})
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestLedgerService_AppendEvent_OrganiserNeedsNoToken(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateInProgress)

	event, err := h.service.AppendEvent(context.Background(), organiserPrincipal(), AppendEventInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		Type:      matchevent.TypeFrameRecorded,
	})
	if err != nil {
		t.Fatalf("AppendEvent error: %v", err)
	}
	if event.Payload == nil {
		t.Fatalf("expected empty payload, got nil")
	}
}

func TestLedgerService_AppendEvent_RevisionMismatch(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateInProgress)

	_, err := h.service.AppendEvent(context.Background(), organiserPrincipal(), AppendEventInput{
		OrgID:            testOrgID,
		FixtureID:        testFixtureID,
		Type:             matchevent.TypeFrameRecorded,
		ExpectedRevision: 3,
	})

	var mismatch *matchevent.RevisionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected revision mismatch, got %v", err)
	}
}

func TestLedgerService_ListEvents_OrgScoped(t *testing.T) {
	t.Parallel()

	h := newLedgerHarness(t, fixture.StateInProgress)

	if _, err := h.service.AppendEvent(context.Background(), organiserPrincipal(), AppendEventInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		Type:      matchevent.TypeFrameRecorded,
	}); err != nil {
		t.Fatalf("AppendEvent error: %v", err)
	}

	events, err := h.service.ListEvents(context.Background(), organiserPrincipal(), testOrgID, testFixtureID)
	if err != nil {
		t.Fatalf("ListEvents error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	outsider := captainPrincipal("p-else")
	outsider.OrgID = "org-other"
	if _, err := h.service.ListEvents(context.Background(), outsider, testOrgID, testFixtureID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
}
