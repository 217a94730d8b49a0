package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/user"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
)

// FixtureService serves read access to fixtures for org members.
type FixtureService struct {
	fixtureRepo fixture.Repository
	logger      *logging.Logger
}

func NewFixtureService(fixtureRepo fixture.Repository, logger *logging.Logger) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureService{fixtureRepo: fixtureRepo, logger: logger}
}

func (s *FixtureService) GetByID(ctx context.Context, principal user.Principal, orgID, fixtureID string) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.GetByID")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	fixtureID = strings.TrimSpace(fixtureID)
	if orgID == "" || fixtureID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: org id and fixture id are required", ErrInvalidInput)
	}
	if principal.OrgID != orgID {
		return fixture.Fixture{}, fmt.Errorf("%w: principal does not belong to org %s", ErrForbidden, orgID)
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

func (s *FixtureService) ListByDivision(ctx context.Context, principal user.Principal, orgID, divisionID string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByDivision")
	defer span.End()

	orgID = strings.TrimSpace(orgID)
	divisionID = strings.TrimSpace(divisionID)
	if orgID == "" || divisionID == "" {
		return nil, fmt.Errorf("%w: org id and division id are required", ErrInvalidInput)
	}
	if principal.OrgID != orgID {
		return nil, fmt.Errorf("%w: principal does not belong to org %s", ErrForbidden, orgID)
	}

	fixtures, err := s.fixtureRepo.ListByDivision(ctx, orgID, divisionID)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	return fixtures, nil
}
