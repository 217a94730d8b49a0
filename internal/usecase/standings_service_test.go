package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

type standingsHarness struct {
	fixtures  *stubFixtureRepo
	events    *stubEventRepo
	snapshots *stubSnapshotRepo
	rulesets  *stubRulesetRepo
	service   *StandingsService
}

func newStandingsHarness(t *testing.T) *standingsHarness {
	t.Helper()

	fixtures := &stubFixtureRepo{fixtures: []fixture.Fixture{
		{ID: "fx-ab", OrgID: testOrgID, DivisionID: testDivisionID, HomeTeamID: "team-a", AwayTeamID: "team-b"},
		{ID: "fx-ac", OrgID: testOrgID, DivisionID: testDivisionID, HomeTeamID: "team-a", AwayTeamID: "team-c"},
		{ID: "fx-bc", OrgID: testOrgID, DivisionID: testDivisionID, HomeTeamID: "team-b", AwayTeamID: "team-c"},
	}}
	teams := &stubTeamRepo{teams: map[string]team.Team{
		"team-a": {ID: "team-a", OrgID: testOrgID, DivisionID: testDivisionID, Name: "Alphas"},
		"team-b": {ID: "team-b", OrgID: testOrgID, DivisionID: testDivisionID, Name: "Bravos"},
		"team-c": {ID: "team-c", OrgID: testOrgID, DivisionID: testDivisionID, Name: "Chalks"},
	}}
	divisions := &stubDivisionRepo{divisions: map[string]division.Division{
		testDivisionID: {ID: testDivisionID, OrgID: testOrgID, Name: "Division One"},
	}}
	events := &stubEventRepo{}
	snapshots := &stubSnapshotRepo{}
	rulesets := &stubRulesetRepo{byDivision: map[string]ruleset.Ruleset{}}

	service := NewStandingsService(divisions, teams, fixtures, events, rulesets, snapshots, &stubIDGenerator{}, logging.NewNop())

	return &standingsHarness{fixtures: fixtures, events: events, snapshots: snapshots, rulesets: rulesets, service: service}
}

func (h *standingsHarness) recordCompleted(fixtureID string, homeFrames, awayFrames int) {
	if h.events.events == nil {
		h.events.events = make(map[string][]matchevent.MatchEvent)
	}
	ledger := h.events.events[fixtureID]
	h.events.events[fixtureID] = append(ledger, matchevent.MatchEvent{
		ID:        fixtureID + "-done",
		FixtureID: fixtureID,
		Type:      matchevent.TypeMatchCompleted,
		Revision:  int64(len(ledger)) + 1,
		Payload:   matchevent.MatchCompletedPayload(homeFrames, awayFrames),
		CreatedAt: time.Now().UTC(),
	})
}

func TestStandingsService_Recompute_SortsTable(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	h.recordCompleted("fx-ab", 6, 4) // Alphas beat Bravos
	h.recordCompleted("fx-ac", 5, 5) // draw
	h.recordCompleted("fx-bc", 2, 8) // Chalks beat Bravos

	snapshot, err := h.service.Recompute(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if len(snapshot.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(snapshot.Rows))
	}

	// Alphas and Chalks both sit on 3 points with 1 win; frame
	// difference separates them.
	if snapshot.Rows[0].TeamID != "team-c" || snapshot.Rows[0].MatchPoints != 3 || snapshot.Rows[0].FrameDifference != 6 {
		t.Fatalf("unexpected rank 1: %+v", snapshot.Rows[0])
	}
	if snapshot.Rows[1].TeamID != "team-a" || snapshot.Rows[1].MatchPoints != 3 || snapshot.Rows[1].FrameDifference != 2 {
		t.Fatalf("unexpected rank 2: %+v", snapshot.Rows[1])
	}
	if snapshot.Rows[2].TeamID != "team-b" || snapshot.Rows[2].MatchPoints != 0 || snapshot.Rows[2].Played != 2 {
		t.Fatalf("unexpected rank 3: %+v", snapshot.Rows[2])
	}

	if got := h.snapshots.count(testDivisionID); got != 1 {
		t.Fatalf("expected 1 snapshot persisted, got %d", got)
	}
}

func TestStandingsService_Recompute_LatestCompletionWins(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	h.recordCompleted("fx-ab", 6, 4)
	// A correction appended later supersedes the first completion.
	h.recordCompleted("fx-ab", 3, 7)

	snapshot, err := h.service.Recompute(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	if snapshot.Rows[0].TeamID != "team-b" || snapshot.Rows[0].MatchPoints != 2 || snapshot.Rows[0].FramesWon != 7 {
		t.Fatalf("expected corrected result to count, got %+v", snapshot.Rows[0])
	}
}

func TestStandingsService_Recompute_Idempotent(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	h.recordCompleted("fx-ab", 6, 4)
	h.recordCompleted("fx-ac", 5, 5)
	h.recordCompleted("fx-bc", 2, 8)

	first, err := h.service.Recompute(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("first Recompute error: %v", err)
	}
	second, err := h.service.Recompute(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("second Recompute error: %v", err)
	}

	// With no intervening ledger change only the snapshot identity moves;
	// the rows are identical.
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("rows differ between recomputes:\n%+v\n%+v", first.Rows, second.Rows)
	}
	if first.PointsModel != second.PointsModel {
		t.Fatalf("points model differs: %+v vs %+v", first.PointsModel, second.PointsModel)
	}
	if got := h.snapshots.count(testDivisionID); got != 2 {
		t.Fatalf("expected 2 persisted snapshots, got %d", got)
	}
}

func TestStandingsService_Recompute_CustomPointsModel(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	h.rulesets.byDivision[testDivisionID] = ruleset.Ruleset{
		DivisionID: testDivisionID,
		Config: map[string]any{
			"points_model": map[string]any{
				"win_points":  float64(3),
				"draw_points": float64(1),
			},
		},
	}
	h.recordCompleted("fx-ab", 6, 4)
	h.recordCompleted("fx-ac", 5, 5)

	snapshot, err := h.service.Recompute(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if snapshot.PointsModel != (standings.PointsModel{Win: 3, Draw: 1, Loss: 0}) {
		t.Fatalf("unexpected points model: %+v", snapshot.PointsModel)
	}
	if snapshot.Rows[0].TeamID != "team-a" || snapshot.Rows[0].MatchPoints != 4 {
		t.Fatalf("unexpected rank 1: %+v", snapshot.Rows[0])
	}
}

func TestStandingsService_Recompute_UnknownDivision(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)

	_, err := h.service.Recompute(context.Background(), testOrgID, "div-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingsService_Latest_ComputesOnDemand(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	h.recordCompleted("fx-ab", 6, 4)

	snapshot, err := h.service.Latest(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if len(snapshot.Rows) != 3 {
		t.Fatalf("expected computed snapshot, got %+v", snapshot)
	}
	if got := h.snapshots.count(testDivisionID); got != 1 {
		t.Fatalf("expected on-demand snapshot persisted, got %d", got)
	}
}

func TestStandingsService_Latest_PrefersStoredSnapshot(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	stored := standings.Snapshot{
		ID:          "snap-1",
		DivisionID:  testDivisionID,
		GeneratedAt: time.Now().UTC(),
		PointsModel: standings.DefaultPointsModel(),
		Rows:        []standings.Row{{TeamID: "team-a", TeamName: "Alphas", MatchPoints: 99}},
	}
	if err := h.snapshots.CreateSnapshot(context.Background(), stored); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	snapshot, err := h.service.Latest(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if snapshot.ID != "snap-1" {
		t.Fatalf("expected stored snapshot, got %+v", snapshot)
	}
	if got := h.snapshots.count(testDivisionID); got != 1 {
		t.Fatalf("expected no extra snapshot, got %d", got)
	}
}

func TestStandingsService_History_NewestFirst(t *testing.T) {
	t.Parallel()

	h := newStandingsHarness(t)
	older := standings.Snapshot{ID: "snap-1", DivisionID: testDivisionID, GeneratedAt: time.Now().UTC().Add(-time.Hour)}
	newer := standings.Snapshot{ID: "snap-2", DivisionID: testDivisionID, GeneratedAt: time.Now().UTC()}
	_ = h.snapshots.CreateSnapshot(context.Background(), older)
	_ = h.snapshots.CreateSnapshot(context.Background(), newer)

	items, err := h.service.History(context.Background(), testOrgID, testDivisionID)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "snap-2" || items[1].ID != "snap-1" {
		t.Fatalf("unexpected history order: %+v", items)
	}
}

func TestStandingsService_RecomputeAll(t *testing.T) {
	t.Parallel()

	fixtures := &stubFixtureRepo{}
	teams := &stubTeamRepo{teams: map[string]team.Team{}}
	divisions := &stubDivisionRepo{divisions: map[string]division.Division{
		"div-a": {ID: "div-a", OrgID: testOrgID},
		"div-b": {ID: "div-b", OrgID: testOrgID},
		"div-c": {ID: "div-c", OrgID: testOrgID},
	}}
	events := &stubEventRepo{}
	snapshots := &stubSnapshotRepo{}

	service := NewStandingsService(divisions, teams, fixtures, events, &stubRulesetRepo{}, snapshots, &stubIDGenerator{}, logging.NewNop())

	result, err := service.RecomputeAll(context.Background(), testOrgID, 2)
	if err != nil {
		t.Fatalf("RecomputeAll error: %v", err)
	}
	if result.DivisionCount != 3 || result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("expected 2 workers, got %d", result.WorkerCount)
	}
	if len(result.Tasks) != 3 || result.Tasks[0].DivisionID != "div-a" {
		t.Fatalf("unexpected tasks: %+v", result.Tasks)
	}
}

func TestStandingsService_RecomputeAll_CollectsFailures(t *testing.T) {
	t.Parallel()

	fixtures := &stubFixtureRepo{}
	teams := &stubTeamRepo{teams: map[string]team.Team{}}
	divisions := &stubDivisionRepo{divisions: map[string]division.Division{
		"div-a": {ID: "div-a", OrgID: testOrgID},
	}}
	events := &stubEventRepo{}
	snapshots := &stubSnapshotRepo{createErr: errors.New("storage offline")}

	service := NewStandingsService(divisions, teams, fixtures, events, &stubRulesetRepo{}, snapshots, &stubIDGenerator{}, logging.NewNop())

	result, err := service.RecomputeAll(context.Background(), testOrgID, 0)
	if err != nil {
		t.Fatalf("RecomputeAll error: %v", err)
	}
	if result.FailedCount != 1 || result.SuccessCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Tasks) != 1 || result.Tasks[0].Status != "failed" {
		t.Fatalf("unexpected tasks: %+v", result.Tasks)
	}
}
