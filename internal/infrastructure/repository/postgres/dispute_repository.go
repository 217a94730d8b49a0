package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

// DisputeRepository reads and patches dispute state. Creation and resolved
// transitions ride the match event transaction in MatchEventRepository.Append;
// Update covers status changes that carry no ledger side effects.
type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) GetByID(ctx context.Context, id string) (dispute.Dispute, bool, error) {
	query, args, err := qb.Select("*").From("disputes").
		Where(qb.Eq("public_id", id)).
		ToSQL()
	if err != nil {
		return dispute.Dispute{}, false, fmt.Errorf("build get dispute by id query: %w", err)
	}

	var row disputeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return dispute.Dispute{}, false, nil
		}
		return dispute.Dispute{}, false, fmt.Errorf("select dispute by id: %w", err)
	}
	return rowToDispute(row), true, nil
}

func (r *DisputeRepository) ListByFixture(ctx context.Context, fixtureID string) ([]dispute.Dispute, error) {
	query, args, err := qb.Select("*").From("disputes").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list disputes query: %w", err)
	}

	var rows []disputeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select disputes by fixture: %w", err)
	}

	out := make([]dispute.Dispute, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToDispute(row))
	}
	return out, nil
}

func (r *DisputeRepository) Update(ctx context.Context, change dispute.StatusChange) error {
	builder := qb.Update("disputes")
	if change.Status != nil {
		builder = builder.Set("status", *change.Status)
	}
	if change.Outcome != nil {
		builder = builder.Set("outcome", *change.Outcome)
	}
	if change.ResolvedAt != nil {
		builder = builder.Set("resolved_at", *change.ResolvedAt)
	}

	query, args, err := builder.Where(qb.Eq("public_id", change.DisputeID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update dispute query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update dispute: %w", err)
	}
	return nil
}

func rowToDispute(row disputeTableModel) dispute.Dispute {
	return dispute.Dispute{
		ID:             row.PublicID,
		FixtureID:      row.FixtureID,
		RaisedByTeamID: row.RaisedByTeamID,
		Reason:         row.Reason,
		Status:         row.Status,
		Outcome:        nullStringToPtr(row.Outcome),
		CreatedAt:      row.CreatedAt,
		ResolvedAt:     nullTimeToTimePtr(row.ResolvedAt),
	}
}
