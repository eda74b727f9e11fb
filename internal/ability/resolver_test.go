package ability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type membershipKey struct{ userID, companyID uint }

// fakeStore is an in-memory Store for resolver tests.
type fakeStore struct {
	memberships map[membershipKey]uint
	profiles    map[uint][]Record
	err         error
}

func (f *fakeStore) MembershipProfile(_ context.Context, userID, companyID uint) (uint, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	profileID, ok := f.memberships[membershipKey{userID, companyID}]
	return profileID, ok, nil
}

func (f *fakeStore) ProfileAbilities(_ context.Context, profileID uint) ([]Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[profileID], nil
}

func records(names ...string) []Record {
	out := make([]Record, 0, len(names))
	for i, n := range names {
		category, _, _ := strings.Cut(n, ".")
		out = append(out, Record{ID: uint(i + 1), Name: n, Category: category})
	}
	return out
}

func TestEffectiveWithoutMembershipIsEmpty(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, 0)

	set, err := r.Effective(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Empty(t, set, "unknown membership must yield the empty set, not an error")
}

func TestEffectiveMatchesAttachedAbilities(t *testing.T) {
	store := &fakeStore{
		memberships: map[membershipKey]uint{{1, 7}: 10},
		profiles: map[uint][]Record{
			10: records("clients.index", "clients.show", "appointments.index"),
		},
	}
	r := NewResolver(store, nil, 0)

	set, err := r.Effective(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"appointments.index", "clients.index", "clients.show"}, set.Names())
	assert.False(t, set.Has("clients.delete"))
}

func TestEffectiveIsPerCompany(t *testing.T) {
	// Same user, secretary in company 7 and admin in company 9.
	store := &fakeStore{
		memberships: map[membershipKey]uint{{1, 7}: 10, {1, 9}: 20},
		profiles: map[uint][]Record{
			10: records("clients.index", "clients.show"),
			20: records("clients.index", "clients.show", "clients.store", "clients.update", "clients.delete"),
		},
	}
	r := NewResolver(store, nil, 0)

	secretary, err := r.Effective(context.Background(), 1, 7)
	require.NoError(t, err)
	admin, err := r.Effective(context.Background(), 1, 9)
	require.NoError(t, err)

	assert.False(t, secretary.Has("clients.delete"))
	assert.True(t, admin.Has("clients.delete"))
}

func TestEffectiveDuplicateGrantsCollapse(t *testing.T) {
	store := &fakeStore{
		memberships: map[membershipKey]uint{{1, 7}: 10},
		profiles: map[uint][]Record{
			10: append(records("clients.index"), records("clients.index")...),
		},
	}
	r := NewResolver(store, nil, 0)

	set, err := r.Effective(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"clients.index"}, set.Names())
}

func TestEffectivePropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := NewResolver(&fakeStore{err: storeErr}, nil, 0)

	_, err := r.Effective(context.Background(), 1, 7)
	assert.ErrorIs(t, err, storeErr)
}

func TestGroupedBucketsByCategory(t *testing.T) {
	store := &fakeStore{
		memberships: map[membershipKey]uint{{1, 7}: 10},
		profiles: map[uint][]Record{
			10: {
				{ID: 1, Name: "clients.index", Category: "clients", Action: "index", DisplayName: "List Clients"},
				{ID: 2, Name: "clients.show", Category: "clients", Action: "show", DisplayName: "View Clients"},
				{ID: 3, Name: "services.index", Category: "services", Action: "index", DisplayName: "List Services"},
			},
		},
	}
	r := NewResolver(store, nil, 0)

	grouped, err := r.Grouped(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["clients"], 2)
	require.Len(t, grouped["services"], 1)
	assert.Equal(t, "List Services", grouped["services"][0].DisplayName)
}

func TestGroupedWithoutMembershipIsEmptyMap(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, 0)

	grouped, err := r.Grouped(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.NotNil(t, grouped)
	assert.Empty(t, grouped)
}

func TestForProfileSkipsMembership(t *testing.T) {
	store := &fakeStore{
		profiles: map[uint][]Record{10: records("profiles.sync")},
	}
	r := NewResolver(store, nil, 0)

	set, err := r.ForProfile(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, set.Has("profiles.sync"))
}
