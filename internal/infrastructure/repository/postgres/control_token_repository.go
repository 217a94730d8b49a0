package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

// ControlTokenRepository reads token state. Writes ride the match event
// transaction and live in MatchEventRepository.Append.
type ControlTokenRepository struct {
	db *sqlx.DB
}

func NewControlTokenRepository(db *sqlx.DB) *ControlTokenRepository {
	return &ControlTokenRepository{db: db}
}

func (r *ControlTokenRepository) FindActive(ctx context.Context, fixtureID, teamID string) (matchtoken.ControlToken, bool, error) {
	query, args, err := qb.Select("*").From("control_tokens").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.Eq("team_public_id", teamID),
			qb.IsNull("revoked_at"),
		).
		ToSQL()
	if err != nil {
		return matchtoken.ControlToken{}, false, fmt.Errorf("build find active token query: %w", err)
	}

	var row controlTokenTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchtoken.ControlToken{}, false, nil
		}
		return matchtoken.ControlToken{}, false, fmt.Errorf("select active token: %w", err)
	}
	return rowToControlToken(row), true, nil
}

func (r *ControlTokenRepository) ListByFixture(ctx context.Context, fixtureID string) ([]matchtoken.ControlToken, error) {
	query, args, err := qb.Select("*").From("control_tokens").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("(revoked_at IS NOT NULL)", "issued_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tokens query: %w", err)
	}

	var rows []controlTokenTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tokens by fixture: %w", err)
	}

	out := make([]matchtoken.ControlToken, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToControlToken(row))
	}
	return out, nil
}

func rowToControlToken(row controlTokenTableModel) matchtoken.ControlToken {
	return matchtoken.ControlToken{
		ID:             row.PublicID,
		FixtureID:      row.FixtureID,
		TeamID:         row.TeamID,
		HolderPlayerID: row.HolderPlayerID,
		IssuedAt:       row.IssuedAt,
		AcceptedAt:     nullTimeToTimePtr(row.AcceptedAt),
		RevokedAt:      nullTimeToTimePtr(row.RevokedAt),
	}
}
