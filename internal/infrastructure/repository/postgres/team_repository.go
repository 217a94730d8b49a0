package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, orgID, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("org_id", orgID),
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by id: %w", err)
	}

	return rowToTeam(row), true, nil
}

func (r *TeamRepository) ListByDivision(ctx context.Context, orgID, divisionID string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("org_id", orgID),
			qb.Eq("division_public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by division query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by division: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTeam(row))
	}
	return out, nil
}

func (r *TeamRepository) IsPlayerOnRoster(ctx context.Context, orgID, teamID, playerID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(1) FROM team_rosters
		 WHERE org_id = $1 AND team_public_id = $2 AND player_user_id = $3 AND deleted_at IS NULL`,
		orgID, teamID, playerID)
	if err != nil {
		return false, fmt.Errorf("select roster entry: %w", err)
	}
	return count > 0, nil
}

func rowToTeam(row teamTableModel) team.Team {
	return team.Team{
		ID:         row.PublicID,
		OrgID:      row.OrgID,
		DivisionID: row.DivisionID,
		Name:       row.Name,
	}
}
