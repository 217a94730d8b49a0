package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

func TestFixtureService_GetByID(t *testing.T) {
	t.Parallel()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{
		{ID: testFixtureID, OrgID: testOrgID, DivisionID: testDivisionID, State: fixture.StateScheduled},
	}}
	service := NewFixtureService(fixtures, logging.NewNop())

	f, err := service.GetByID(context.Background(), organiserPrincipal(), testOrgID, testFixtureID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if f.ID != testFixtureID {
		t.Fatalf("unexpected fixture: %+v", f)
	}

	if _, err := service.GetByID(context.Background(), organiserPrincipal(), testOrgID, "fx-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	outsider := organiserPrincipal()
	outsider.OrgID = "org-other"
	if _, err := service.GetByID(context.Background(), outsider, testOrgID, testFixtureID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestFixtureService_ListByDivision(t *testing.T) {
	t.Parallel()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{
		{ID: "fx-1", OrgID: testOrgID, DivisionID: testDivisionID},
		{ID: "fx-2", OrgID: testOrgID, DivisionID: testDivisionID},
		{ID: "fx-3", OrgID: testOrgID, DivisionID: "div-other"},
	}}
	service := NewFixtureService(fixtures, logging.NewNop())

	got, err := service.ListByDivision(context.Background(), organiserPrincipal(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("ListByDivision error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(got))
	}
}
