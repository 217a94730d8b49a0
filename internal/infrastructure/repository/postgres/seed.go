package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/frameleague/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo pool division into an empty database. It
// mirrors the in-memory seed so both backends serve the same data on a
// fresh install. A database with existing divisions is left alone.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM divisions WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count divisions for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, d := range memory.SeedDivisions() {
		if err := seedExec(ctx, tx, `
INSERT INTO divisions (public_id, org_id, name, sport)
VALUES (:public_id, :org_id, :name, :sport)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": d.ID,
			"org_id":    d.OrgID,
			"name":      d.Name,
			"sport":     d.Sport,
		}); err != nil {
			return fmt.Errorf("seed division %s: %w", d.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		if err := seedExec(ctx, tx, `
INSERT INTO teams (public_id, org_id, division_public_id, name)
VALUES (:public_id, :org_id, :division_public_id, :name)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":          t.ID,
			"org_id":             t.OrgID,
			"division_public_id": t.DivisionID,
			"name":               t.Name,
		}); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, entry := range memory.SeedRosterEntries() {
		if err := seedExec(ctx, tx, `
INSERT INTO team_rosters (org_id, team_public_id, player_user_id)
VALUES (:org_id, :team_public_id, :player_user_id)
ON CONFLICT (team_public_id, player_user_id) DO NOTHING`, map[string]any{
			"org_id":         memory.SeedOrgID,
			"team_public_id": entry.TeamID,
			"player_user_id": entry.PlayerID,
		}); err != nil {
			return fmt.Errorf("seed roster entry %s/%s: %w", entry.TeamID, entry.PlayerID, err)
		}
	}

	rs := memory.SeedRuleset()
	if err := seedExec(ctx, tx, `
INSERT INTO rulesets (org_id, division_public_id, sport, config)
VALUES (:org_id, :division_public_id, :sport, :config)
ON CONFLICT (org_id, division_public_id) DO NOTHING`, map[string]any{
		"org_id":             memory.SeedOrgID,
		"division_public_id": rs.DivisionID,
		"sport":              rs.Sport,
		"config":             encodeJSONMap(rs.Config),
	}); err != nil {
		return fmt.Errorf("seed ruleset %s: %w", rs.DivisionID, err)
	}

	for _, fx := range memory.SeedFixtures() {
		if err := seedExec(ctx, tx, `
INSERT INTO fixtures (public_id, org_id, division_public_id, home_team_public_id, away_team_public_id, sport, state, status, scheduled_at)
VALUES (:public_id, :org_id, :division_public_id, :home_team_public_id, :away_team_public_id, :sport, :state, :status, :scheduled_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":           fx.ID,
			"org_id":              fx.OrgID,
			"division_public_id":  fx.DivisionID,
			"home_team_public_id": fx.HomeTeamID,
			"away_team_public_id": fx.AwayTeamID,
			"sport":               fx.Sport,
			"state":               string(fx.State),
			"status":              string(fx.Status),
			"scheduled_at":        fx.ScheduledAt,
		}); err != nil {
			return fmt.Errorf("seed fixture %s: %w", fx.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func seedExec(ctx context.Context, tx *sqlx.Tx, query string, args map[string]any) error {
	sqlQuery, bound, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	sqlQuery = tx.Rebind(sqlQuery)
	if _, err := tx.ExecContext(ctx, sqlQuery, bound...); err != nil {
		return err
	}
	return nil
}
