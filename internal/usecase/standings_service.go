package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	idgen "github.com/riskibarqy/frameleague/internal/platform/id"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

const defaultRecomputeWorkers = 4

type StandingsService struct {
	divisionRepo division.Repository
	teamRepo     team.Repository
	fixtureRepo  fixture.Repository
	eventRepo    matchevent.Repository
	rulesetRepo  ruleset.Repository
	snapshotRepo standings.Repository
	ids          idgen.Generator
	logger       *logging.Logger
}

func NewStandingsService(
	divisionRepo division.Repository,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	eventRepo matchevent.Repository,
	rulesetRepo ruleset.Repository,
	snapshotRepo standings.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StandingsService{
		divisionRepo: divisionRepo,
		teamRepo:     teamRepo,
		fixtureRepo:  fixtureRepo,
		eventRepo:    eventRepo,
		rulesetRepo:  rulesetRepo,
		snapshotRepo: snapshotRepo,
		ids:          ids,
		logger:       logger,
	}
}

// Recompute rebuilds the division table from the ledgers and appends a new
// snapshot. Equal ledgers always produce equal rows, so repeated calls only
// add identical history entries.
func (s *StandingsService) Recompute(ctx context.Context, orgID, divisionID string) (standings.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recompute")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	divisionID = strings.TrimSpace(divisionID)
	if orgID == "" || divisionID == "" {
		return standings.Snapshot{}, fmt.Errorf("%w: org id and division id are required", ErrInvalidInput)
	}

	if _, exists, err := s.divisionRepo.GetByID(ctx, orgID, divisionID); err != nil {
		return standings.Snapshot{}, fmt.Errorf("get division: %w", err)
	} else if !exists {
		return standings.Snapshot{}, fmt.Errorf("%w: division=%s", ErrNotFound, divisionID)
	}

	teams, err := s.teamRepo.ListByDivision(ctx, orgID, divisionID)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("list division teams: %w", err)
	}
	fixtures, err := s.fixtureRepo.ListByDivision(ctx, orgID, divisionID)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("list division fixtures: %w", err)
	}

	fixtureIDs := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		fixtureIDs = append(fixtureIDs, f.ID)
	}
	latestCompleted, err := s.eventRepo.LatestCompletedByFixtures(ctx, fixtureIDs)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("load completed results: %w", err)
	}

	model := standings.DefaultPointsModel()
	if rs, exists, err := s.rulesetRepo.GetByDivision(ctx, orgID, divisionID); err != nil {
		return standings.Snapshot{}, fmt.Errorf("get ruleset: %w", err)
	} else if exists {
		model = standings.ResolvePointsModel(rs.Config)
	}

	snapshotID, err := s.ids.NewID("snap")
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}

	snapshot := standings.Snapshot{
		ID:          snapshotID,
		DivisionID:  divisionID,
		GeneratedAt: time.Now().UTC(),
		PointsModel: model,
		Rows:        standings.Aggregate(teams, fixtures, latestCompleted, model),
	}
	if err := s.snapshotRepo.CreateSnapshot(ctx, snapshot); err != nil {
		return standings.Snapshot{}, fmt.Errorf("persist standings snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "standings snapshot created",
		"division_id", divisionID,
		"rows", len(snapshot.Rows),
	)

	return snapshot, nil
}

// Latest returns the newest snapshot, computing one on demand for divisions
// that have never been aggregated.
func (s *StandingsService) Latest(ctx context.Context, orgID, divisionID string) (standings.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Latest")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	divisionID = strings.TrimSpace(divisionID)
	if orgID == "" || divisionID == "" {
		return standings.Snapshot{}, fmt.Errorf("%w: org id and division id are required", ErrInvalidInput)
	}

	if _, exists, err := s.divisionRepo.GetByID(ctx, orgID, divisionID); err != nil {
		return standings.Snapshot{}, fmt.Errorf("get division: %w", err)
	} else if !exists {
		return standings.Snapshot{}, fmt.Errorf("%w: division=%s", ErrNotFound, divisionID)
	}

	snapshot, exists, err := s.snapshotRepo.Latest(ctx, divisionID)
	if err != nil {
		return standings.Snapshot{}, fmt.Errorf("load latest snapshot: %w", err)
	}
	if exists {
		return snapshot, nil
	}

	return s.Recompute(ctx, orgID, divisionID)
}

func (s *StandingsService) History(ctx context.Context, orgID, divisionID string) ([]standings.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.History")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	divisionID = strings.TrimSpace(divisionID)
	if orgID == "" || divisionID == "" {
		return nil, fmt.Errorf("%w: org id and division id are required", ErrInvalidInput)
	}

	if _, exists, err := s.divisionRepo.GetByID(ctx, orgID, divisionID); err != nil {
		return nil, fmt.Errorf("get division: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: division=%s", ErrNotFound, divisionID)
	}

	items, err := s.snapshotRepo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return items, nil
}

type RecomputeAllResult struct {
	DivisionCount int                  `json:"division_count"`
	SuccessCount  int                  `json:"success_count"`
	FailedCount   int                  `json:"failed_count"`
	WorkerCount   int                  `json:"worker_count"`
	Tasks         []RecomputeTaskError `json:"tasks"`
}

type RecomputeTaskError struct {
	DivisionID string `json:"division_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// RecomputeAll rebuilds every division of an org over a bounded worker
// pool. Per-division failures are collected, not fatal.
func (s *StandingsService) RecomputeAll(ctx context.Context, orgID string, maxWorkers int) (RecomputeAllResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecomputeAll")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return RecomputeAllResult{}, fmt.Errorf("%w: org id is required", ErrInvalidInput)
	}

	divisions, err := s.divisionRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return RecomputeAllResult{}, fmt.Errorf("list divisions: %w", err)
	}

	workerCount := maxWorkers
	if workerCount < 1 {
		workerCount = defaultRecomputeWorkers
	}
	if workerCount > len(divisions) && len(divisions) > 0 {
		workerCount = len(divisions)
	}

	result := RecomputeAllResult{
		DivisionCount: len(divisions),
		WorkerCount:   workerCount,
	}
	if len(divisions) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeAllResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg           sync.WaitGroup
		successCount atomic.Int64
		mu           sync.Mutex
		tasks        []RecomputeTaskError
	)

	for _, div := range divisions {
		div := div
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			if _, err := s.Recompute(ctx, orgID, div.ID); err != nil {
				mu.Lock()
				tasks = append(tasks, RecomputeTaskError{
					DivisionID: div.ID,
					Status:     "failed",
					Message:    err.Error(),
				})
				mu.Unlock()
				return
			}
			successCount.Add(1)
			mu.Lock()
			tasks = append(tasks, RecomputeTaskError{DivisionID: div.ID, Status: "success"})
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			tasks = append(tasks, RecomputeTaskError{
				DivisionID: div.ID,
				Status:     "failed",
				Message:    fmt.Sprintf("submit task: %v", submitErr),
			})
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DivisionID < tasks[j].DivisionID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = len(divisions) - result.SuccessCount
	result.Tasks = tasks

	return result, nil
}
