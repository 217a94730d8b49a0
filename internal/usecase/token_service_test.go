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

type tokenHarness struct {
	fixtures *stubFixtureRepo
	events   *stubEventRepo
	tokens   *stubTokenRepo
	teams    *stubTeamRepo
	service  *TokenService
}

func newTokenHarness(t *testing.T) *tokenHarness {
	t.Helper()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{{
		ID:         testFixtureID,
		OrgID:      testOrgID,
		DivisionID: testDivisionID,
		HomeTeamID: testHomeTeamID,
		AwayTeamID: testAwayTeamID,
		State:      fixture.StateScheduled,
		Status:     fixture.StatusScheduled,
	}}}
	teams := &stubTeamRepo{
		teams: map[string]team.Team{
			testHomeTeamID: {ID: testHomeTeamID, OrgID: testOrgID, DivisionID: testDivisionID, Name: "Cue Crew"},
			testAwayTeamID: {ID: testAwayTeamID, OrgID: testOrgID, DivisionID: testDivisionID, Name: "Break Room"},
		},
		roster: map[string]bool{
			rosterKey(testHomeTeamID, "p-home"):   true,
			rosterKey(testHomeTeamID, "p-home-2"): true,
			rosterKey(testAwayTeamID, "p-away"):   true,
		},
	}
	tokens := &stubTokenRepo{}
	events := &stubEventRepo{fixtures: fixtures, tokens: tokens}

	service := NewTokenService(fixtures, events, tokens, teams, &stubIDGenerator{}, logging.NewNop())

	return &tokenHarness{fixtures: fixtures, events: events, tokens: tokens, teams: teams, service: service}
}

func TestTokenService_Issue_RevokesPriorToken(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	now := time.Now().UTC()
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-old",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home",
		IssuedAt:       now.Add(-time.Hour),
		AcceptedAt:     &now,
	})

	token, err := h.service.Issue(context.Background(), organiserPrincipal(), IssueTokenInput{
		OrgID:          testOrgID,
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home-2",
	})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token.HolderPlayerID != "p-home-2" || token.AcceptedAt == nil {
		t.Fatalf("expected pre-accepted token for new holder, got %+v", token)
	}

	active, exists, err := h.tokens.FindActive(context.Background(), testFixtureID, testHomeTeamID)
	if err != nil {
		t.Fatalf("FindActive error: %v", err)
	}
	if !exists || active.ID != token.ID {
		t.Fatalf("expected the new token to be the only active one, got %+v exists=%v", active, exists)
	}

	ledger, _ := h.events.ListByFixture(context.Background(), testFixtureID)
	if len(ledger) != 1 || ledger[0].Type != matchevent.TypeTokenIssued {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}
}

func TestTokenService_Issue_RequiresOrganiser(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)

	_, err := h.service.Issue(context.Background(), captainPrincipal("p-home"), IssueTokenInput{
		OrgID:          testOrgID,
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTokenService_Issue_HolderMustBeOnRoster(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)

	_, err := h.service.Issue(context.Background(), organiserPrincipal(), IssueTokenInput{
		OrgID:          testOrgID,
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-stranger",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenService_Transfer_ClearsAcceptance(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	now := time.Now().UTC()
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-1",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home",
		IssuedAt:       now,
		AcceptedAt:     &now,
	})

	token, err := h.service.Transfer(context.Background(), captainPrincipal("p-home"), TransferTokenInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		ToPlayerID:    "p-home-2",
	})
	if err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if token.HolderPlayerID != "p-home-2" || token.AcceptedAt != nil {
		t.Fatalf("expected unaccepted token for new holder, got %+v", token)
	}

	stored, _, _ := h.tokens.FindActive(context.Background(), testFixtureID, testHomeTeamID)
	if stored.HolderPlayerID != "p-home-2" || stored.AcceptedAt != nil {
		t.Fatalf("stored token not updated: %+v", stored)
	}
}

func TestTokenService_Transfer_OnlyHolderMayTransfer(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	now := time.Now().UTC()
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-1",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home",
		IssuedAt:       now,
		AcceptedAt:     &now,
	})

	_, err := h.service.Transfer(context.Background(), captainPrincipal("p-home-2"), TransferTokenInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home-2",
		ToPlayerID:    "p-home",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTokenService_Transfer_SamePlayerRejected(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	now := time.Now().UTC()
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-1",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home",
		IssuedAt:       now,
		AcceptedAt:     &now,
	})

	_, err := h.service.Transfer(context.Background(), captainPrincipal("p-home"), TransferTokenInput{
		OrgID:         testOrgID,
		FixtureID:     testFixtureID,
		TeamID:        testHomeTeamID,
		ActorPlayerID: "p-home",
		ToPlayerID:    "p-home",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenService_Accept(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-1",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home-2",
		IssuedAt:       time.Now().UTC(),
	})

	token, err := h.service.Accept(context.Background(), captainPrincipal("p-home-2"), AcceptTokenInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		TeamID:    testHomeTeamID,
		PlayerID:  "p-home-2",
	})
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if token.AcceptedAt == nil {
		t.Fatalf("expected accepted token, got %+v", token)
	}

	_, err = h.service.Accept(context.Background(), captainPrincipal("p-home-2"), AcceptTokenInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		TeamID:    testHomeTeamID,
		PlayerID:  "p-home-2",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on second accept, got %v", err)
	}
}

func TestTokenService_Accept_OnlyNamedHolder(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	h.tokens.tokens = append(h.tokens.tokens, matchtoken.ControlToken{
		ID:             "tok-1",
		FixtureID:      testFixtureID,
		TeamID:         testHomeTeamID,
		HolderPlayerID: "p-home-2",
		IssuedAt:       time.Now().UTC(),
	})

	_, err := h.service.Accept(context.Background(), captainPrincipal("p-home"), AcceptTokenInput{
		OrgID:     testOrgID,
		FixtureID: testFixtureID,
		TeamID:    testHomeTeamID,
		PlayerID:  "p-home",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTokenService_ListByFixture_ActiveFirst(t *testing.T) {
	t.Parallel()

	h := newTokenHarness(t)
	now := time.Now().UTC()
	revoked := now.Add(-time.Minute)
	h.tokens.tokens = append(h.tokens.tokens,
		matchtoken.ControlToken{ID: "tok-old", FixtureID: testFixtureID, TeamID: testHomeTeamID, HolderPlayerID: "p-home", IssuedAt: now.Add(-time.Hour), RevokedAt: &revoked},
		matchtoken.ControlToken{ID: "tok-new", FixtureID: testFixtureID, TeamID: testHomeTeamID, HolderPlayerID: "p-home-2", IssuedAt: now},
	)

	tokens, err := h.service.ListByFixture(context.Background(), captainPrincipal("p-home"), testOrgID, testFixtureID)
	if err != nil {
		t.Fatalf("ListByFixture error: %v", err)
	}
	if len(tokens) != 2 || tokens[0].ID != "tok-new" || tokens[1].ID != "tok-old" {
		t.Fatalf("unexpected order: %+v", tokens)
	}
}
