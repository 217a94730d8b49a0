package ruleset

// Ruleset carries per-division competition settings as a free-form config
// document. Known keys: "points_model".
type Ruleset struct {
	DivisionID string
	Sport      string
	Config     map[string]any
}
