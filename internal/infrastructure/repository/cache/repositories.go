package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	basecache "github.com/riskibarqy/frameleague/internal/platform/cache"
)

// Read-through decorators for the reference data the aggregator hits on
// every recompute. Divisions, teams and rulesets change out of band, so a
// short TTL is enough; ledger reads are never cached.

type DivisionRepository struct {
	next  division.Repository
	cache *basecache.Store
}

func NewDivisionRepository(next division.Repository, cache *basecache.Store) *DivisionRepository {
	return &DivisionRepository{next: next, cache: cache}
}

func (r *DivisionRepository) GetByID(ctx context.Context, orgID, divisionID string) (division.Division, bool, error) {
	key := cacheKey("division:id", orgID, divisionID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, orgID, divisionID)
		if err != nil {
			return nil, err
		}
		return cachedDivision{value: item, exists: exists}, nil
	})
	if err != nil {
		return division.Division{}, false, err
	}

	cached, _ := v.(cachedDivision)
	return cached.value, cached.exists, nil
}

func (r *DivisionRepository) ListByOrg(ctx context.Context, orgID string) ([]division.Division, error) {
	key := cacheKey("division:list", orgID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByOrg(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return append([]division.Division(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]division.Division)
	return append([]division.Division(nil), items...), nil
}

type cachedDivision struct {
	value  division.Division
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, orgID, teamID string) (team.Team, bool, error) {
	key := cacheKey("team:id", orgID, teamID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, orgID, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListByDivision(ctx context.Context, orgID, divisionID string) ([]team.Team, error) {
	key := cacheKey("team:list", orgID, divisionID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByDivision(ctx, orgID, divisionID)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) IsPlayerOnRoster(ctx context.Context, orgID, teamID, playerID string) (bool, error) {
	key := cacheKey("team:roster", orgID, teamID, playerID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.IsPlayerOnRoster(ctx, orgID, teamID, playerID)
	})
	if err != nil {
		return false, err
	}

	onRoster, _ := v.(bool)
	return onRoster, nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

type RulesetRepository struct {
	next  ruleset.Repository
	cache *basecache.Store
}

func NewRulesetRepository(next ruleset.Repository, cache *basecache.Store) *RulesetRepository {
	return &RulesetRepository{next: next, cache: cache}
}

func (r *RulesetRepository) GetByDivision(ctx context.Context, orgID, divisionID string) (ruleset.Ruleset, bool, error) {
	key := cacheKey("ruleset:division", orgID, divisionID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByDivision(ctx, orgID, divisionID)
		if err != nil {
			return nil, err
		}
		return cachedRuleset{value: item, exists: exists}, nil
	})
	if err != nil {
		return ruleset.Ruleset{}, false, err
	}

	cached, _ := v.(cachedRuleset)
	return cached.value, cached.exists, nil
}

type cachedRuleset struct {
	value  ruleset.Ruleset
	exists bool
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
