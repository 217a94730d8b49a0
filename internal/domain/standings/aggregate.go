package standings

import (
	"sort"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/team"
)

// Aggregate folds the latest MATCH_COMPLETED event of every fixture into a
// sorted division table. The fold is deterministic: equal inputs always
// produce equal rows. Fixtures without a completion event are skipped, as
// are completions naming a team outside the division.
func Aggregate(teams []team.Team, fixtures []fixture.Fixture, latestCompleted map[string]matchevent.MatchEvent, model PointsModel) []Row {
	rowByTeam := make(map[string]*Row, len(teams))
	ordered := make([]*Row, 0, len(teams))
	for _, t := range teams {
		row := &Row{TeamID: t.ID, TeamName: t.Name}
		rowByTeam[t.ID] = row
		ordered = append(ordered, row)
	}

	for _, f := range fixtures {
		ev, ok := latestCompleted[f.ID]
		if !ok {
			continue
		}
		home, okHome := rowByTeam[f.HomeTeamID]
		away, okAway := rowByTeam[f.AwayTeamID]
		if !okHome || !okAway {
			continue
		}

		homeFrames := ev.Payload.Int(matchevent.KeyHomeFrames)
		awayFrames := ev.Payload.Int(matchevent.KeyAwayFrames)

		home.Played++
		away.Played++
		home.FramesWon += homeFrames
		home.FramesLost += awayFrames
		away.FramesWon += awayFrames
		away.FramesLost += homeFrames

		switch {
		case homeFrames > awayFrames:
			home.Won++
			away.Lost++
			home.MatchPoints += model.Win
			away.MatchPoints += model.Loss
		case homeFrames < awayFrames:
			away.Won++
			home.Lost++
			away.MatchPoints += model.Win
			home.MatchPoints += model.Loss
		default:
			home.Drawn++
			away.Drawn++
			home.MatchPoints += model.Draw
			away.MatchPoints += model.Draw
		}
	}

	out := make([]Row, 0, len(ordered))
	for _, row := range ordered {
		row.FrameDifference = row.FramesWon - row.FramesLost
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MatchPoints != b.MatchPoints {
			return a.MatchPoints > b.MatchPoints
		}
		if a.Won != b.Won {
			return a.Won > b.Won
		}
		if a.FrameDifference != b.FrameDifference {
			return a.FrameDifference > b.FrameDifference
		}
		if a.FramesWon != b.FramesWon {
			return a.FramesWon > b.FramesWon
		}
		return a.TeamName < b.TeamName
	})

	return out
}
