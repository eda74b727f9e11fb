package ability

import (
	"context"
	"time"

	"agendia/pkg/cache"
)

// Info is the presentation view of a granted ability, used by the grouped
// endpoints that drive permission UIs. Gate decisions only ever look at
// Name.
type Info struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Action      string `json:"action"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// Record is what the Store yields per granted ability.
type Record struct {
	ID          uint
	Name        string
	Category    string
	Action      string
	DisplayName string
	Description string
}

// Store is the persistence surface the resolver needs. The gorm
// implementation lives in store.go; tests substitute fakes.
type Store interface {
	// MembershipProfile returns the profile a user holds in a company.
	// ok=false (with a nil error) means no active membership exists.
	MembershipProfile(ctx context.Context, userID, companyID uint) (profileID uint, ok bool, err error)
	// ProfileAbilities returns the active abilities attached to a profile.
	// An unknown profile yields an empty slice, not an error.
	ProfileAbilities(ctx context.Context, profileID uint) ([]Record, error)
}

// Resolver computes effective ability sets per (user, company). A user
// with no membership in the company gets the empty set: "no abilities"
// means deny everything, it is never an error.
type Resolver struct {
	store    Store
	cache    *cache.Client // nil disables caching
	cacheTTL time.Duration
}

// NewResolver builds a resolver. c may be nil.
func NewResolver(store Store, c *cache.Client, cacheTTL time.Duration) *Resolver {
	return &Resolver{store: store, cache: c, cacheTTL: cacheTTL}
}

// Effective returns the ability names granted to userID inside companyID.
func (r *Resolver) Effective(ctx context.Context, userID, companyID uint) (Set, error) {
	if r.cache != nil {
		if names, ok, err := r.cache.GetAbilities(ctx, userID, companyID); err == nil && ok {
			return NewSet(names...), nil
		}
	}

	set, err := r.effectiveFromStore(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		// Cache failures only cost the memoization, never the request.
		_ = r.cache.SetAbilities(ctx, userID, companyID, set.Names(), r.cacheTTL)
	}
	return set, nil
}

func (r *Resolver) effectiveFromStore(ctx context.Context, userID, companyID uint) (Set, error) {
	profileID, ok, err := r.store.MembershipProfile(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewSet(), nil
	}
	records, err := r.store.ProfileAbilities(ctx, profileID)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(records))
	for _, rec := range records {
		set[rec.Name] = struct{}{}
	}
	return set, nil
}

// Grouped buckets the user's granted abilities by category, carrying the
// presentation fields. Not cached; it feeds UI rendering, not gates.
func (r *Resolver) Grouped(ctx context.Context, userID, companyID uint) (map[string][]Info, error) {
	profileID, ok, err := r.store.MembershipProfile(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string][]Info{}, nil
	}
	return r.GroupedForProfile(ctx, profileID)
}

// ForProfile is the profile-level variant: what the profile grants
// anywhere, with no membership or tenant step.
func (r *Resolver) ForProfile(ctx context.Context, profileID uint) (Set, error) {
	records, err := r.store.ProfileAbilities(ctx, profileID)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(records))
	for _, rec := range records {
		set[rec.Name] = struct{}{}
	}
	return set, nil
}

// GroupedForProfile buckets a profile's abilities by category.
func (r *Resolver) GroupedForProfile(ctx context.Context, profileID uint) (map[string][]Info, error) {
	records, err := r.store.ProfileAbilities(ctx, profileID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Info)
	for _, rec := range records {
		grouped[rec.Category] = append(grouped[rec.Category], Info{
			ID:          rec.ID,
			Name:        rec.Name,
			Action:      rec.Action,
			DisplayName: rec.DisplayName,
			Description: rec.Description,
		})
	}
	return grouped, nil
}

// Invalidate drops the cached set for (user, company). No-op without a
// cache.
func (r *Resolver) Invalidate(ctx context.Context, userID, companyID uint) {
	if r.cache == nil {
		return
	}
	_ = r.cache.InvalidateAbilities(ctx, userID, companyID)
}
