package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/division"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

type divisionTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	OrgID     string     `db:"org_id"`
	Name      string     `db:"name"`
	Sport     string     `db:"sport"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type DivisionRepository struct {
	db *sqlx.DB
}

func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

func (r *DivisionRepository) GetByID(ctx context.Context, orgID, divisionID string) (division.Division, bool, error) {
	query, args, err := qb.Select("*").From("divisions").
		Where(
			qb.Eq("org_id", orgID),
			qb.Eq("public_id", divisionID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return division.Division{}, false, fmt.Errorf("build get division by id query: %w", err)
	}

	var row divisionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return division.Division{}, false, nil
		}
		return division.Division{}, false, fmt.Errorf("select division by id: %w", err)
	}

	return rowToDivision(row), true, nil
}

func (r *DivisionRepository) ListByOrg(ctx context.Context, orgID string) ([]division.Division, error) {
	query, args, err := qb.Select("*").From("divisions").
		Where(
			qb.Eq("org_id", orgID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select divisions query: %w", err)
	}

	var rows []divisionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select divisions by org: %w", err)
	}

	out := make([]division.Division, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToDivision(row))
	}
	return out, nil
}

func rowToDivision(row divisionTableModel) division.Division {
	return division.Division{
		ID:    row.PublicID,
		OrgID: row.OrgID,
		Name:  row.Name,
		Sport: row.Sport,
	}
}
