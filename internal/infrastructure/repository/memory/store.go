package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	"github.com/riskibarqy/frameleague/internal/domain/team"
)

// Store is the in-memory backend used when no database is configured. One
// mutex guards every table so an append and its effects commit atomically,
// mirroring the transactional contract of the postgres layer.
type Store struct {
	mu sync.Mutex

	fixtures  []fixture.Fixture
	events    map[string][]matchevent.MatchEvent
	tokens    []matchtoken.ControlToken
	disputes  []dispute.Dispute
	snapshots []standings.Snapshot
	teams     []team.Team
	rosters   map[string]bool
	divisions []division.Division
	rulesets  map[string]ruleset.Ruleset
}

func NewStore() *Store {
	return &Store{
		events:   make(map[string][]matchevent.MatchEvent),
		rosters:  make(map[string]bool),
		rulesets: make(map[string]ruleset.Ruleset),
	}
}

func rosterKey(orgID, teamID, playerID string) string {
	return orgID + "|" + teamID + "|" + playerID
}

// Fixtures returns the fixture repository view.
func (s *Store) Fixtures() *FixtureRepository { return &FixtureRepository{store: s} }

// Events returns the match event repository view.
func (s *Store) Events() *MatchEventRepository { return &MatchEventRepository{store: s} }

// Tokens returns the control token repository view.
func (s *Store) Tokens() *ControlTokenRepository { return &ControlTokenRepository{store: s} }

// Disputes returns the dispute repository view.
func (s *Store) Disputes() *DisputeRepository { return &DisputeRepository{store: s} }

// Snapshots returns the standings snapshot repository view.
func (s *Store) Snapshots() *StandingsSnapshotRepository {
	return &StandingsSnapshotRepository{store: s}
}

// Teams returns the team repository view.
func (s *Store) Teams() *TeamRepository { return &TeamRepository{store: s} }

// Divisions returns the division repository view.
func (s *Store) Divisions() *DivisionRepository { return &DivisionRepository{store: s} }

// Rulesets returns the ruleset repository view.
func (s *Store) Rulesets() *RulesetRepository { return &RulesetRepository{store: s} }

type FixtureRepository struct {
	store *Store
}

func (r *FixtureRepository) GetByID(_ context.Context, orgID, fixtureID string) (fixture.Fixture, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, f := range r.store.fixtures {
		if f.OrgID == orgID && f.ID == fixtureID {
			return f, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r *FixtureRepository) ListByDivision(_ context.Context, orgID, divisionID string) ([]fixture.Fixture, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]fixture.Fixture, 0)
	for _, f := range r.store.fixtures {
		if f.OrgID == orgID && f.DivisionID == divisionID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type MatchEventRepository struct {
	store *Store
}

func (r *MatchEventRepository) Append(_ context.Context, fixtureID string, expected *int64, drafts []matchevent.Draft, effects matchevent.Effects) ([]matchevent.MatchEvent, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("append match events: no drafts")
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(len(s.events[fixtureID]))
	if expected != nil && *expected != current {
		return nil, &matchevent.RevisionMismatchError{Expected: *expected, Actual: current}
	}

	now := time.Now().UTC()
	out := make([]matchevent.MatchEvent, 0, len(drafts))
	for i, draft := range drafts {
		event := matchevent.MatchEvent{
			ID:          draft.ID,
			FixtureID:   fixtureID,
			Type:        draft.Type,
			Revision:    current + int64(i) + 1,
			Payload:     draft.Payload,
			ActorUserID: draft.ActorUserID,
			CreatedAt:   now,
		}
		s.events[fixtureID] = append(s.events[fixtureID], event)
		out = append(out, event)
	}

	s.applyEffectsLocked(fixtureID, effects, now)
	return out, nil
}

func (s *Store) applyEffectsLocked(fixtureID string, effects matchevent.Effects, now time.Time) {
	if effects.FixtureState != "" {
		for i := range s.fixtures {
			if s.fixtures[i].ID == fixtureID {
				s.fixtures[i].State = effects.FixtureState
				s.fixtures[i].Status = effects.FixtureStatus
				s.fixtures[i].UpdatedAt = now
			}
		}
	}

	if effect := effects.Token; effect != nil {
		if effect.RevokeTeamID != "" {
			for i := range s.tokens {
				tok := &s.tokens[i]
				if tok.FixtureID == fixtureID && tok.TeamID == effect.RevokeTeamID && tok.RevokedAt == nil {
					revokedAt := now
					tok.RevokedAt = &revokedAt
				}
			}
		}
		if effect.Create != nil {
			s.tokens = append(s.tokens, *effect.Create)
		}
		if change := effect.SetHolder; change != nil {
			for i := range s.tokens {
				if s.tokens[i].ID == change.TokenID {
					s.tokens[i].HolderPlayerID = change.HolderPlayerID
					s.tokens[i].AcceptedAt = nil
				}
			}
		}
		if change := effect.SetAccepted; change != nil {
			for i := range s.tokens {
				if s.tokens[i].ID == change.TokenID {
					acceptedAt := change.AcceptedAt
					s.tokens[i].AcceptedAt = &acceptedAt
				}
			}
		}
	}

	if d := effects.CreateDispute; d != nil {
		s.disputes = append(s.disputes, *d)
	}
	if change := effects.UpdateDispute; change != nil {
		for i := range s.disputes {
			if s.disputes[i].ID != change.DisputeID {
				continue
			}
			if change.Status != nil {
				s.disputes[i].Status = *change.Status
			}
			if change.Outcome != nil {
				s.disputes[i].Outcome = change.Outcome
			}
			if change.ResolvedAt != nil {
				s.disputes[i].ResolvedAt = change.ResolvedAt
			}
		}
	}
}

func (r *MatchEventRepository) ListByFixture(_ context.Context, fixtureID string) ([]matchevent.MatchEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	items := r.store.events[fixtureID]
	out := make([]matchevent.MatchEvent, len(items))
	copy(out, items)
	return out, nil
}

func (r *MatchEventRepository) CurrentRevision(_ context.Context, fixtureID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.events[fixtureID])), nil
}

func (r *MatchEventRepository) LatestByType(_ context.Context, fixtureID string, eventType matchevent.EventType) (matchevent.MatchEvent, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	items := r.store.events[fixtureID]
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Type == eventType {
			return items[i], true, nil
		}
	}
	return matchevent.MatchEvent{}, false, nil
}

func (r *MatchEventRepository) LatestCompletedByFixtures(_ context.Context, fixtureIDs []string) (map[string]matchevent.MatchEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string]matchevent.MatchEvent)
	for _, id := range fixtureIDs {
		items := r.store.events[id]
		for i := len(items) - 1; i >= 0; i-- {
			if items[i].Type == matchevent.TypeMatchCompleted {
				out[id] = items[i]
				break
			}
		}
	}
	return out, nil
}

type ControlTokenRepository struct {
	store *Store
}

func (r *ControlTokenRepository) FindActive(_ context.Context, fixtureID, teamID string) (matchtoken.ControlToken, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, tok := range r.store.tokens {
		if tok.FixtureID == fixtureID && tok.TeamID == teamID && tok.RevokedAt == nil {
			return tok, true, nil
		}
	}
	return matchtoken.ControlToken{}, false, nil
}

func (r *ControlTokenRepository) ListByFixture(_ context.Context, fixtureID string) ([]matchtoken.ControlToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]matchtoken.ControlToken, 0)
	for _, tok := range r.store.tokens {
		if tok.FixtureID == fixtureID {
			out = append(out, tok)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].RevokedAt == nil) != (out[j].RevokedAt == nil) {
			return out[i].RevokedAt == nil
		}
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

type DisputeRepository struct {
	store *Store
}

func (r *DisputeRepository) GetByID(_ context.Context, id string) (dispute.Dispute, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.disputes {
		if d.ID == id {
			return d, true, nil
		}
	}
	return dispute.Dispute{}, false, nil
}

func (r *DisputeRepository) ListByFixture(_ context.Context, fixtureID string) ([]dispute.Dispute, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]dispute.Dispute, 0)
	for _, d := range r.store.disputes {
		if d.FixtureID == fixtureID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DisputeRepository) Update(_ context.Context, change dispute.StatusChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.disputes {
		if r.store.disputes[i].ID != change.DisputeID {
			continue
		}
		if change.Status != nil {
			r.store.disputes[i].Status = *change.Status
		}
		if change.Outcome != nil {
			r.store.disputes[i].Outcome = change.Outcome
		}
		if change.ResolvedAt != nil {
			r.store.disputes[i].ResolvedAt = change.ResolvedAt
		}
	}
	return nil
}

type StandingsSnapshotRepository struct {
	store *Store
}

func (r *StandingsSnapshotRepository) CreateSnapshot(_ context.Context, snapshot standings.Snapshot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.snapshots = append(r.store.snapshots, snapshot)
	return nil
}

func (r *StandingsSnapshotRepository) Latest(_ context.Context, divisionID string) (standings.Snapshot, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.snapshots) - 1; i >= 0; i-- {
		if r.store.snapshots[i].DivisionID == divisionID {
			return r.store.snapshots[i], true, nil
		}
	}
	return standings.Snapshot{}, false, nil
}

func (r *StandingsSnapshotRepository) ListByDivision(_ context.Context, divisionID string) ([]standings.Snapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]standings.Snapshot, 0)
	for i := len(r.store.snapshots) - 1; i >= 0; i-- {
		if r.store.snapshots[i].DivisionID == divisionID {
			out = append(out, r.store.snapshots[i])
		}
	}
	return out, nil
}

type TeamRepository struct {
	store *Store
}

func (r *TeamRepository) GetByID(_ context.Context, orgID, teamID string) (team.Team, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.teams {
		if t.OrgID == orgID && t.ID == teamID {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) ListByDivision(_ context.Context, orgID, divisionID string) ([]team.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]team.Team, 0)
	for _, t := range r.store.teams {
		if t.OrgID == orgID && t.DivisionID == divisionID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) IsPlayerOnRoster(_ context.Context, orgID, teamID, playerID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.rosters[rosterKey(orgID, teamID, playerID)], nil
}

type DivisionRepository struct {
	store *Store
}

func (r *DivisionRepository) GetByID(_ context.Context, orgID, divisionID string) (division.Division, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.divisions {
		if d.OrgID == orgID && d.ID == divisionID {
			return d, true, nil
		}
	}
	return division.Division{}, false, nil
}

func (r *DivisionRepository) ListByOrg(_ context.Context, orgID string) ([]division.Division, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]division.Division, 0)
	for _, d := range r.store.divisions {
		if d.OrgID == orgID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type RulesetRepository struct {
	store *Store
}

func (r *RulesetRepository) GetByDivision(_ context.Context, orgID, divisionID string) (ruleset.Ruleset, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rs, ok := r.store.rulesets[orgID+"|"+divisionID]
	return rs, ok, nil
}
