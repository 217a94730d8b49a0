package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

type standingsSnapshotTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	DivisionID  string    `db:"division_public_id"`
	GeneratedAt time.Time `db:"generated_at"`
	PointsModel string    `db:"points_model"`
	Rows        string    `db:"standing_rows"`
	CreatedAt   time.Time `db:"created_at"`
}

type standingsSnapshotInsertModel struct {
	PublicID    string    `db:"public_id"`
	DivisionID  string    `db:"division_public_id"`
	GeneratedAt time.Time `db:"generated_at"`
	PointsModel string    `db:"points_model"`
	Rows        string    `db:"standing_rows"`
}

// StandingsSnapshotRepository stores the append-only snapshot history.
// Snapshots are never updated or deleted.
type StandingsSnapshotRepository struct {
	db *sqlx.DB
}

func NewStandingsSnapshotRepository(db *sqlx.DB) *StandingsSnapshotRepository {
	return &StandingsSnapshotRepository{db: db}
}

func (r *StandingsSnapshotRepository) CreateSnapshot(ctx context.Context, snapshot standings.Snapshot) error {
	modelJSON, err := sonic.Marshal(snapshot.PointsModel)
	if err != nil {
		return fmt.Errorf("encode points model: %w", err)
	}
	rowsJSON, err := sonic.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("encode standings rows: %w", err)
	}

	insertModel := standingsSnapshotInsertModel{
		PublicID:    snapshot.ID,
		DivisionID:  snapshot.DivisionID,
		GeneratedAt: snapshot.GeneratedAt,
		PointsModel: string(modelJSON),
		Rows:        string(rowsJSON),
	}
	query, args, err := qb.InsertModel("standings_snapshots", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert standings snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert standings snapshot: %w", err)
	}
	return nil
}

func (r *StandingsSnapshotRepository) Latest(ctx context.Context, divisionID string) (standings.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("standings_snapshots").
		Where(qb.Eq("division_public_id", divisionID)).
		OrderBy("generated_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return standings.Snapshot{}, false, fmt.Errorf("build latest snapshot query: %w", err)
	}

	var row standingsSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standings.Snapshot{}, false, nil
		}
		return standings.Snapshot{}, false, fmt.Errorf("select latest snapshot: %w", err)
	}

	snapshot, err := rowToSnapshot(row)
	if err != nil {
		return standings.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *StandingsSnapshotRepository) ListByDivision(ctx context.Context, divisionID string) ([]standings.Snapshot, error) {
	query, args, err := qb.Select("*").From("standings_snapshots").
		Where(qb.Eq("division_public_id", divisionID)).
		OrderBy("generated_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshots query: %w", err)
	}

	var rows []standingsSnapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select snapshots by division: %w", err)
	}

	out := make([]standings.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := rowToSnapshot(row)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func rowToSnapshot(row standingsSnapshotTableModel) (standings.Snapshot, error) {
	var model standings.PointsModel
	if err := sonic.Unmarshal([]byte(row.PointsModel), &model); err != nil {
		return standings.Snapshot{}, fmt.Errorf("decode points model snapshot=%s: %w", row.PublicID, err)
	}
	var tableRows []standings.Row
	if err := sonic.Unmarshal([]byte(row.Rows), &tableRows); err != nil {
		return standings.Snapshot{}, fmt.Errorf("decode standings rows snapshot=%s: %w", row.PublicID, err)
	}

	return standings.Snapshot{
		ID:          row.PublicID,
		DivisionID:  row.DivisionID,
		GeneratedAt: row.GeneratedAt,
		PointsModel: model,
		Rows:        tableRows,
	}, nil
}
