package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

type rulesetTableModel struct {
	ID         int64      `db:"id"`
	OrgID      string     `db:"org_id"`
	DivisionID string     `db:"division_public_id"`
	Sport      string     `db:"sport"`
	Config     string     `db:"config"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

type RulesetRepository struct {
	db *sqlx.DB
}

func NewRulesetRepository(db *sqlx.DB) *RulesetRepository {
	return &RulesetRepository{db: db}
}

func (r *RulesetRepository) GetByDivision(ctx context.Context, orgID, divisionID string) (ruleset.Ruleset, bool, error) {
	query, args, err := qb.Select("*").From("rulesets").
		Where(
			qb.Eq("org_id", orgID),
			qb.Eq("division_public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return ruleset.Ruleset{}, false, fmt.Errorf("build get ruleset query: %w", err)
	}

	var row rulesetTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ruleset.Ruleset{}, false, nil
		}
		return ruleset.Ruleset{}, false, fmt.Errorf("select ruleset by division: %w", err)
	}

	return ruleset.Ruleset{
		DivisionID: row.DivisionID,
		Sport:      row.Sport,
		Config:     decodeJSONMap(row.Config),
	}, true, nil
}
