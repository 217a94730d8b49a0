package usecase

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

type stubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *stubIDGenerator) NewID(prefix string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.next), nil
}

type stubFixtureRepo struct {
	mu       sync.Mutex
	fixtures []fixture.Fixture
}

func (s *stubFixtureRepo) GetByID(_ context.Context, orgID, fixtureID string) (fixture.Fixture, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fixtures {
		if f.OrgID == orgID && f.ID == fixtureID {
			return f, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (s *stubFixtureRepo) ListByDivision(_ context.Context, orgID, divisionID string) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fixture.Fixture, 0)
	for _, f := range s.fixtures {
		if f.OrgID == orgID && f.DivisionID == divisionID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubFixtureRepo) setState(fixtureID, state, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fixtures {
		if s.fixtures[i].ID == fixtureID {
			s.fixtures[i].State = state
			s.fixtures[i].Status = status
		}
	}
}

type stubTokenRepo struct {
	mu     sync.Mutex
	tokens []matchtoken.ControlToken
}

func (s *stubTokenRepo) FindActive(_ context.Context, fixtureID, teamID string) (matchtoken.ControlToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.tokens {
		if tok.FixtureID == fixtureID && tok.TeamID == teamID && tok.RevokedAt == nil {
			return tok, true, nil
		}
	}
	return matchtoken.ControlToken{}, false, nil
}

func (s *stubTokenRepo) ListByFixture(_ context.Context, fixtureID string) ([]matchtoken.ControlToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]matchtoken.ControlToken, 0)
	for _, tok := range s.tokens {
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

func (s *stubTokenRepo) apply(effect *matchevent.TokenEffect, fixtureID string) {
	if effect == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if effect.RevokeTeamID != "" {
		now := time.Now().UTC()
		for i := range s.tokens {
			tok := &s.tokens[i]
			if tok.FixtureID == fixtureID && tok.TeamID == effect.RevokeTeamID && tok.RevokedAt == nil {
				tok.RevokedAt = &now
			}
		}
	}
	if effect.Create != nil {
		s.tokens = append(s.tokens, *effect.Create)
	}
	if effect.SetHolder != nil {
		for i := range s.tokens {
			if s.tokens[i].ID == effect.SetHolder.TokenID {
				s.tokens[i].HolderPlayerID = effect.SetHolder.HolderPlayerID
				s.tokens[i].AcceptedAt = nil
			}
		}
	}
	if effect.SetAccepted != nil {
		for i := range s.tokens {
			if s.tokens[i].ID == effect.SetAccepted.TokenID {
				at := effect.SetAccepted.AcceptedAt
				s.tokens[i].AcceptedAt = &at
			}
		}
	}
}

type stubDisputeRepo struct {
	mu       sync.Mutex
	disputes []dispute.Dispute
}

func (s *stubDisputeRepo) GetByID(_ context.Context, id string) (dispute.Dispute, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.disputes {
		if d.ID == id {
			return d, true, nil
		}
	}
	return dispute.Dispute{}, false, nil
}

func (s *stubDisputeRepo) ListByFixture(_ context.Context, fixtureID string) ([]dispute.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dispute.Dispute, 0)
	for _, d := range s.disputes {
		if d.FixtureID == fixtureID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubDisputeRepo) Update(_ context.Context, change dispute.StatusChange) error {
	s.apply(matchevent.Effects{UpdateDispute: &change})
	return nil
}

func (s *stubDisputeRepo) apply(effects matchevent.Effects) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if effects.CreateDispute != nil {
		s.disputes = append(s.disputes, *effects.CreateDispute)
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

// stubEventRepo keeps per-fixture ledgers in memory and mirrors the
// transactional contract of the real repository: appends are revisioned,
// a stale expected revision fails without writing, and effects are applied
// to the linked stubs in the same call.
type stubEventRepo struct {
	mu       sync.Mutex
	events   map[string][]matchevent.MatchEvent
	effects  []matchevent.Effects
	fixtures *stubFixtureRepo
	tokens   *stubTokenRepo
	disputes *stubDisputeRepo

	appendErr error
}

func (s *stubEventRepo) Append(_ context.Context, fixtureID string, expected *int64, drafts []matchevent.Draft, effects matchevent.Effects) ([]matchevent.MatchEvent, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}

	s.mu.Lock()
	if s.events == nil {
		s.events = make(map[string][]matchevent.MatchEvent)
	}
	current := int64(len(s.events[fixtureID]))
	if expected != nil && *expected != current {
		s.mu.Unlock()
		return nil, &matchevent.RevisionMismatchError{Expected: *expected, Actual: current}
	}

	out := make([]matchevent.MatchEvent, 0, len(drafts))
	for i, draft := range drafts {
		event := matchevent.MatchEvent{
			ID:          draft.ID,
			FixtureID:   fixtureID,
			Type:        draft.Type,
			Revision:    current + int64(i) + 1,
			Payload:     draft.Payload,
			ActorUserID: draft.ActorUserID,
			CreatedAt:   time.Now().UTC(),
		}
		s.events[fixtureID] = append(s.events[fixtureID], event)
		out = append(out, event)
	}
	s.effects = append(s.effects, effects)
	s.mu.Unlock()

	if s.fixtures != nil && effects.FixtureState != "" {
		s.fixtures.setState(fixtureID, effects.FixtureState, effects.FixtureStatus)
	}
	if s.tokens != nil {
		s.tokens.apply(effects.Token, fixtureID)
	}
	if s.disputes != nil {
		s.disputes.apply(effects)
	}

	return out, nil
}

func (s *stubEventRepo) ListByFixture(_ context.Context, fixtureID string) ([]matchevent.MatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.events[fixtureID]
	out := make([]matchevent.MatchEvent, len(items))
	copy(out, items)
	return out, nil
}

func (s *stubEventRepo) CurrentRevision(_ context.Context, fixtureID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.events[fixtureID])), nil
}

func (s *stubEventRepo) LatestByType(_ context.Context, fixtureID string, eventType matchevent.EventType) (matchevent.MatchEvent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.events[fixtureID]
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Type == eventType {
			return items[i], true, nil
		}
	}
	return matchevent.MatchEvent{}, false, nil
}

func (s *stubEventRepo) LatestCompletedByFixtures(_ context.Context, fixtureIDs []string) (map[string]matchevent.MatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]matchevent.MatchEvent)
	for _, id := range fixtureIDs {
		items := s.events[id]
		for i := len(items) - 1; i >= 0; i-- {
			if items[i].Type == matchevent.TypeMatchCompleted {
				out[id] = items[i]
				break
			}
		}
	}
	return out, nil
}

func (s *stubEventRepo) lastEffects() matchevent.Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.effects) == 0 {
		return matchevent.Effects{}
	}
	return s.effects[len(s.effects)-1]
}

type stubTeamRepo struct {
	teams  map[string]team.Team
	roster map[string]bool
}

func rosterKey(teamID, playerID string) string {
	return teamID + "|" + playerID
}

func (s *stubTeamRepo) GetByID(_ context.Context, orgID, teamID string) (team.Team, bool, error) {
	t, ok := s.teams[teamID]
	if !ok || t.OrgID != orgID {
		return team.Team{}, false, nil
	}
	return t, true, nil
}

func (s *stubTeamRepo) ListByDivision(_ context.Context, orgID, divisionID string) ([]team.Team, error) {
	out := make([]team.Team, 0)
	for _, t := range s.teams {
		if t.OrgID == orgID && t.DivisionID == divisionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubTeamRepo) IsPlayerOnRoster(_ context.Context, _, teamID, playerID string) (bool, error) {
	return s.roster[rosterKey(teamID, playerID)], nil
}

type stubDivisionRepo struct {
	divisions map[string]division.Division
}

func (s *stubDivisionRepo) GetByID(_ context.Context, orgID, divisionID string) (division.Division, bool, error) {
	d, ok := s.divisions[divisionID]
	if !ok || d.OrgID != orgID {
		return division.Division{}, false, nil
	}
	return d, true, nil
}

func (s *stubDivisionRepo) ListByOrg(_ context.Context, orgID string) ([]division.Division, error) {
	out := make([]division.Division, 0)
	for _, d := range s.divisions {
		if d.OrgID == orgID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubRulesetRepo struct {
	byDivision map[string]ruleset.Ruleset
}

func (s *stubRulesetRepo) GetByDivision(_ context.Context, _, divisionID string) (ruleset.Ruleset, bool, error) {
	r, ok := s.byDivision[divisionID]
	return r, ok, nil
}

type stubSnapshotRepo struct {
	mu        sync.Mutex
	snapshots []standings.Snapshot
	createErr error
}

func (s *stubSnapshotRepo) CreateSnapshot(_ context.Context, snapshot standings.Snapshot) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *stubSnapshotRepo) Latest(_ context.Context, divisionID string) (standings.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest standings.Snapshot
	found := false
	for _, snap := range s.snapshots {
		if snap.DivisionID != divisionID {
			continue
		}
		if !found || snap.GeneratedAt.After(latest.GeneratedAt) {
			latest = snap
			found = true
		}
	}
	return latest, found, nil
}

func (s *stubSnapshotRepo) ListByDivision(_ context.Context, divisionID string) ([]standings.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]standings.Snapshot, 0)
	for _, snap := range s.snapshots {
		if snap.DivisionID == divisionID {
			out = append(out, snap)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}

func (s *stubSnapshotRepo) count(divisionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, snap := range s.snapshots {
		if snap.DivisionID == divisionID {
			n++
		}
	}
	return n
}

type publishedEvent struct {
	name    string
	payload any
}

type stubNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (s *stubNotifier) Publish(_ context.Context, event string, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, publishedEvent{name: event, payload: payload})
	return nil
}

func (s *stubNotifier) published() []publishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]publishedEvent, len(s.events))
	copy(out, s.events)
	return out
}
