package memory

import (
	"time"

	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/team"
)

const (
	SeedOrgID      = "org-city-pool-league"
	SeedDivisionID = "div-monday-pool-a"
)

// RosterEntry links a player to a team for seeding purposes.
type RosterEntry struct {
	TeamID   string
	PlayerID string
}

// NewSeededStore returns a store preloaded with a small pool division so
// the API is usable out of the box in memory mode.
func NewSeededStore() *Store {
	s := NewStore()

	s.divisions = SeedDivisions()
	s.teams = SeedTeams()
	for _, entry := range SeedRosterEntries() {
		s.rosters[rosterKey(SeedOrgID, entry.TeamID, entry.PlayerID)] = true
	}
	s.rulesets[SeedOrgID+"|"+SeedDivisionID] = SeedRuleset()
	s.fixtures = SeedFixtures()

	return s
}

func SeedDivisions() []division.Division {
	return []division.Division{
		{ID: SeedDivisionID, OrgID: SeedOrgID, Name: "Monday Pool Division A", Sport: fixture.SportPool},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "team-crown-and-anchor", OrgID: SeedOrgID, DivisionID: SeedDivisionID, Name: "Crown & Anchor"},
		{ID: "team-railway-arms", OrgID: SeedOrgID, DivisionID: SeedDivisionID, Name: "Railway Arms"},
		{ID: "team-kings-head", OrgID: SeedOrgID, DivisionID: SeedDivisionID, Name: "Kings Head"},
		{ID: "team-red-lion", OrgID: SeedOrgID, DivisionID: SeedDivisionID, Name: "Red Lion"},
	}
}

func SeedRosterEntries() []RosterEntry {
	return []RosterEntry{
		{"team-crown-and-anchor", "user-anna"},
		{"team-crown-and-anchor", "user-bert"},
		{"team-railway-arms", "user-carla"},
		{"team-railway-arms", "user-dev"},
		{"team-kings-head", "user-erin"},
		{"team-kings-head", "user-fred"},
		{"team-red-lion", "user-gita"},
		{"team-red-lion", "user-hugo"},
	}
}

func SeedRuleset() ruleset.Ruleset {
	return ruleset.Ruleset{
		DivisionID: SeedDivisionID,
		Sport:      fixture.SportPool,
		Config: map[string]any{
			"frames_per_match": 10,
			"points_model": map[string]any{
				"win":  2,
				"draw": 1,
				"loss": 0,
			},
		},
	}
}

func SeedFixtures() []fixture.Fixture {
	now := time.Now().UTC()
	monday := nextMonday(now)
	return []fixture.Fixture{
		{
			ID:          "fx-crown-v-railway",
			OrgID:       SeedOrgID,
			DivisionID:  SeedDivisionID,
			HomeTeamID:  "team-crown-and-anchor",
			AwayTeamID:  "team-railway-arms",
			Sport:       fixture.SportPool,
			State:       fixture.StateScheduled,
			Status:      fixture.StatusScheduled,
			ScheduledAt: monday,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "fx-kings-v-redlion",
			OrgID:       SeedOrgID,
			DivisionID:  SeedDivisionID,
			HomeTeamID:  "team-kings-head",
			AwayTeamID:  "team-red-lion",
			Sport:       fixture.SportPool,
			State:       fixture.StateScheduled,
			Status:      fixture.StatusScheduled,
			ScheduledAt: monday,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "fx-railway-v-kings",
			OrgID:       SeedOrgID,
			DivisionID:  SeedDivisionID,
			HomeTeamID:  "team-railway-arms",
			AwayTeamID:  "team-kings-head",
			Sport:       fixture.SportPool,
			State:       fixture.StateScheduled,
			Status:      fixture.StatusScheduled,
			ScheduledAt: monday.AddDate(0, 0, 7),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func nextMonday(from time.Time) time.Time {
	day := from
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 19, 30, 0, 0, time.UTC)
}
