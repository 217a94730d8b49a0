package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	qb "github.com/riskibarqy/frameleague/internal/platform/querybuilder"
)

// MatchEventRepository persists the append-only per-fixture ledgers. The
// unique index on (fixture_public_id, revision) is the arbiter for
// concurrent appends: exactly one writer lands on a revision, every loser
// gets a revision mismatch.
type MatchEventRepository struct {
	db *sqlx.DB
}

func NewMatchEventRepository(db *sqlx.DB) *MatchEventRepository {
	return &MatchEventRepository{db: db}
}

func (r *MatchEventRepository) Append(ctx context.Context, fixtureID string, expected *int64, drafts []matchevent.Draft, effects matchevent.Effects) ([]matchevent.MatchEvent, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("append match events: no drafts")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx append match events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := currentRevisionTx(ctx, tx, fixtureID)
	if err != nil {
		return nil, err
	}
	if expected != nil && *expected != current {
		return nil, &matchevent.RevisionMismatchError{Expected: *expected, Actual: current}
	}

	now := time.Now().UTC()
	out := make([]matchevent.MatchEvent, 0, len(drafts))
	for i, draft := range drafts {
		revision := current + int64(i) + 1
		insertModel := matchEventInsertModel{
			PublicID:    draft.ID,
			FixtureID:   fixtureID,
			EventType:   string(draft.Type),
			Revision:    revision,
			Payload:     encodeJSONMap(draft.Payload),
			ActorUserID: draft.ActorUserID,
			CreatedAt:   now,
		}
		query, args, err := qb.InsertModel("match_events", insertModel, "")
		if err != nil {
			return nil, fmt.Errorf("build insert match event query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				// A concurrent append won the revision. Report the
				// revision we read so the caller can re-read and retry.
				actual, revErr := r.CurrentRevision(ctx, fixtureID)
				if revErr != nil {
					actual = current
				}
				return nil, &matchevent.RevisionMismatchError{Expected: current, Actual: actual}
			}
			return nil, fmt.Errorf("insert match event revision=%d: %w", revision, err)
		}

		out = append(out, matchevent.MatchEvent{
			ID:          draft.ID,
			FixtureID:   fixtureID,
			Type:        draft.Type,
			Revision:    revision,
			Payload:     draft.Payload,
			ActorUserID: draft.ActorUserID,
			CreatedAt:   now,
		})
	}

	if err := applyEffects(ctx, tx, fixtureID, effects, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append match events tx: %w", err)
	}
	return out, nil
}

func (r *MatchEventRepository) ListByFixture(ctx context.Context, fixtureID string) ([]matchevent.MatchEvent, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("revision").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match events query: %w", err)
	}

	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match events: %w", err)
	}

	out := make([]matchevent.MatchEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToMatchEvent(row))
	}
	return out, nil
}

func (r *MatchEventRepository) CurrentRevision(ctx context.Context, fixtureID string) (int64, error) {
	var revision int64
	err := r.db.GetContext(ctx, &revision,
		"SELECT COALESCE(MAX(revision), 0) FROM match_events WHERE fixture_public_id = $1", fixtureID)
	if err != nil {
		return 0, fmt.Errorf("select current revision: %w", err)
	}
	return revision, nil
}

func (r *MatchEventRepository) LatestByType(ctx context.Context, fixtureID string, eventType matchevent.EventType) (matchevent.MatchEvent, bool, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.Eq("event_type", string(eventType)),
		).
		OrderBy("revision DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return matchevent.MatchEvent{}, false, fmt.Errorf("build latest event by type query: %w", err)
	}

	var row matchEventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchevent.MatchEvent{}, false, nil
		}
		return matchevent.MatchEvent{}, false, fmt.Errorf("select latest event by type: %w", err)
	}
	return rowToMatchEvent(row), true, nil
}

func (r *MatchEventRepository) LatestCompletedByFixtures(ctx context.Context, fixtureIDs []string) (map[string]matchevent.MatchEvent, error) {
	out := make(map[string]matchevent.MatchEvent, len(fixtureIDs))
	if len(fixtureIDs) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(fixtureIDs))
	for _, id := range fixtureIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select("DISTINCT ON (fixture_public_id) *").From("match_events").
		Where(
			qb.In("fixture_public_id", ids),
			qb.Eq("event_type", string(matchevent.TypeMatchCompleted)),
		).
		OrderBy("fixture_public_id", "revision DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build latest completed events query: %w", err)
	}

	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select latest completed events: %w", err)
	}

	for _, row := range rows {
		out[row.FixtureID] = rowToMatchEvent(row)
	}
	return out, nil
}

func currentRevisionTx(ctx context.Context, tx *sqlx.Tx, fixtureID string) (int64, error) {
	var revision int64
	err := tx.GetContext(ctx, &revision,
		"SELECT COALESCE(MAX(revision), 0) FROM match_events WHERE fixture_public_id = $1", fixtureID)
	if err != nil {
		return 0, fmt.Errorf("select current revision: %w", err)
	}
	return revision, nil
}

func applyEffects(ctx context.Context, tx *sqlx.Tx, fixtureID string, effects matchevent.Effects, now time.Time) error {
	if effects.FixtureState != "" {
		query, args, err := qb.Update("fixtures").
			Set("state", effects.FixtureState).
			Set("status", effects.FixtureStatus).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", fixtureID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update fixture state query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update fixture state: %w", err)
		}
	}

	if effect := effects.Token; effect != nil {
		if effect.RevokeTeamID != "" {
			query, args, err := qb.Update("control_tokens").
				Set("revoked_at", now).
				Where(
					qb.Eq("fixture_public_id", fixtureID),
					qb.Eq("team_public_id", effect.RevokeTeamID),
					qb.IsNull("revoked_at"),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build revoke token query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("revoke control token: %w", err)
			}
		}
		if token := effect.Create; token != nil {
			insertModel := controlTokenInsertModel{
				PublicID:       token.ID,
				FixtureID:      token.FixtureID,
				TeamID:         token.TeamID,
				HolderPlayerID: token.HolderPlayerID,
				IssuedAt:       token.IssuedAt,
				AcceptedAt:     token.AcceptedAt,
			}
			query, args, err := qb.InsertModel("control_tokens", insertModel, "")
			if err != nil {
				return fmt.Errorf("build insert control token query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert control token: %w", err)
			}
		}
		if change := effect.SetHolder; change != nil {
			query, args, err := qb.Update("control_tokens").
				Set("holder_player_id", change.HolderPlayerID).
				SetExpr("accepted_at", "NULL").
				Where(qb.Eq("public_id", change.TokenID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build transfer token query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("transfer control token: %w", err)
			}
		}
		if change := effect.SetAccepted; change != nil {
			query, args, err := qb.Update("control_tokens").
				Set("accepted_at", change.AcceptedAt).
				Where(qb.Eq("public_id", change.TokenID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build accept token query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("accept control token: %w", err)
			}
		}
	}

	if d := effects.CreateDispute; d != nil {
		insertModel := disputeInsertModel{
			PublicID:       d.ID,
			FixtureID:      d.FixtureID,
			RaisedByTeamID: d.RaisedByTeamID,
			Reason:         d.Reason,
			Status:         d.Status,
			Outcome:        d.Outcome,
			CreatedAt:      d.CreatedAt,
		}
		query, args, err := qb.InsertModel("disputes", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert dispute query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert dispute: %w", err)
		}
	}

	if change := effects.UpdateDispute; change != nil {
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
		query, args, err := builder.
			Where(qb.Eq("public_id", change.DisputeID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update dispute query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update dispute: %w", err)
		}
	}

	return nil
}

func rowToMatchEvent(row matchEventTableModel) matchevent.MatchEvent {
	return matchevent.MatchEvent{
		ID:          row.PublicID,
		FixtureID:   row.FixtureID,
		Type:        matchevent.EventType(row.EventType),
		Revision:    row.Revision,
		Payload:     matchevent.Payload(decodeJSONMap(row.Payload)),
		ActorUserID: row.ActorUserID,
		CreatedAt:   row.CreatedAt,
	}
}
