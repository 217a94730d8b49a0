package division

// Division groups teams and fixtures that share one standings table.
type Division struct {
	ID    string
	OrgID string
	Name  string
	Sport string
}
