package user

// Role values mirror the account service's membership roles.
const (
	RoleOrgAdmin     = "ORG_ADMIN"
	RoleCommissioner = "COMMISSIONER"
	RoleCaptain      = "CAPTAIN"
	RolePlayer       = "PLAYER"
)

// Principal is the authenticated identity resolved from token introspection.
type Principal struct {
	UserID string
	Email  string
	Role   string
	OrgID  string
}

// IsOrganiser reports whether the principal may perform organiser-only
// operations such as lock overrides and token issuance.
func (p Principal) IsOrganiser() bool {
	return p.Role == RoleOrgAdmin || p.Role == RoleCommissioner
}
