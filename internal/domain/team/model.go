package team

import "fmt"

// Team is one club side inside a division.
type Team struct {
	ID         string
	OrgID      string
	DivisionID string
	Name       string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.OrgID == "" {
		return fmt.Errorf("team org id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
