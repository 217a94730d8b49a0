package standings

import "time"

// Row is one team's line in a division table.
type Row struct {
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	Played          int    `json:"played"`
	Won             int    `json:"won"`
	Drawn           int    `json:"drawn"`
	Lost            int    `json:"lost"`
	FramesWon       int    `json:"frames_won"`
	FramesLost      int    `json:"frames_lost"`
	FrameDifference int    `json:"frame_difference"`
	MatchPoints     int    `json:"match_points"`
}

// Snapshot is an immutable, append-only record of a recomputation. Older
// snapshots are never rewritten; history is a list of them.
type Snapshot struct {
	ID          string      `json:"id"`
	DivisionID  string      `json:"division_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	PointsModel PointsModel `json:"points_model"`
	Rows        []Row       `json:"rows"`
}

type PointsModel struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

// DefaultPointsModel is the league default: two points for a win.
func DefaultPointsModel() PointsModel {
	return PointsModel{Win: 2, Draw: 0, Loss: 0}
}
