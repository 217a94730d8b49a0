package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/domain/user"
)

// accessPolicy centralizes the write-permission rules shared by the
// workflow services. Organiser roles may perform admin operations without a
// token, but result submission and review are token-gated for every role.
type accessPolicy struct {
	teamRepo  team.Repository
	tokenRepo matchtoken.Repository
}

func newAccessPolicy(teamRepo team.Repository, tokenRepo matchtoken.Repository) *accessPolicy {
	return &accessPolicy{teamRepo: teamRepo, tokenRepo: tokenRepo}
}

func (p *accessPolicy) requireOrgMember(principal user.Principal, orgID string) error {
	if principal.OrgID == "" || principal.OrgID != orgID {
		return fmt.Errorf("%w: principal does not belong to org %s", ErrForbidden, orgID)
	}
	return nil
}

func (p *accessPolicy) requireOrganiser(principal user.Principal, orgID string) error {
	if err := p.requireOrgMember(principal, orgID); err != nil {
		return err
	}
	if !principal.IsOrganiser() {
		return fmt.Errorf("%w: organiser role required", ErrForbidden)
	}
	return nil
}

// requireTeamActor checks that the acting team plays in the fixture and, for
// non-organiser principals, that the actor is on that team's roster.
func (p *accessPolicy) requireTeamActor(ctx context.Context, principal user.Principal, f fixture.Fixture, teamID, actorPlayerID string) error {
	if err := p.requireOrgMember(principal, f.OrgID); err != nil {
		return err
	}
	if !f.HasTeam(teamID) {
		return fmt.Errorf("%w: team %s does not play in fixture %s", ErrForbidden, teamID, f.ID)
	}
	if principal.IsOrganiser() {
		return nil
	}

	onRoster, err := p.teamRepo.IsPlayerOnRoster(ctx, f.OrgID, teamID, actorPlayerID)
	if err != nil {
		return fmt.Errorf("check roster: %w", err)
	}
	if !onRoster {
		return fmt.Errorf("%w: player %s is not on team %s roster", ErrForbidden, actorPlayerID, teamID)
	}
	return nil
}

// requireAcceptedToken enforces the control-token gate on submit, approve
// and reject. Roles never bypass this check.
func (p *accessPolicy) requireAcceptedToken(ctx context.Context, fixtureID, teamID, actorPlayerID string) (matchtoken.ControlToken, error) {
	token, exists, err := p.tokenRepo.FindActive(ctx, fixtureID, teamID)
	if err != nil {
		return matchtoken.ControlToken{}, fmt.Errorf("find active token: %w", err)
	}
	if !exists {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: team %s holds no active control token for fixture %s", ErrForbidden, teamID, fixtureID)
	}
	if token.HolderPlayerID != actorPlayerID {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: control token is held by another player", ErrForbidden)
	}
	if !token.Accepted() {
		return matchtoken.ControlToken{}, fmt.Errorf("%w: control token has not been accepted", ErrForbidden)
	}
	return token, nil
}
