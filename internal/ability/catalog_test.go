package ability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogNamesAreCategoryDotAction(t *testing.T) {
	for _, d := range Catalog() {
		assert.Equal(t, d.Category+"."+d.Action, d.Name)
		assert.NotContains(t, d.Category, ".")
		assert.NotEmpty(t, d.DisplayName)
	}
}

func TestCatalogHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Catalog() {
		assert.False(t, seen[d.Name], "duplicate catalog entry %s", d.Name)
		seen[d.Name] = true
	}
}

func TestCatalogCoversCrudGridAndExtras(t *testing.T) {
	for _, name := range []string{
		"clients.index", "clients.show", "clients.store", "clients.update", "clients.delete",
		"appointments.index", "schedule_blocks.delete",
		"profiles.sync", "companies.restore", "companies.index_all",
	} {
		assert.True(t, Known(name), "missing catalog entry %s", name)
	}
}

func TestCrossTenantListingIsItsOwnAbility(t *testing.T) {
	// The member-scoped and cross-tenant company listings must never share
	// a gate: holding companies.index in one company says nothing about
	// seeing other tenants.
	assert.True(t, Known("companies.index"))
	assert.True(t, Known("companies.index_all"))
	assert.NotEqual(t, MustKnow("companies.index"), MustKnow("companies.index_all"))
}

func TestKnownRejectsUnknownNames(t *testing.T) {
	assert.False(t, Known("clients.fly"))
	assert.False(t, Known("clients"))
	assert.False(t, Known(""))
}

func TestMustKnow(t *testing.T) {
	assert.Equal(t, "clients.delete", MustKnow("clients.delete"))

	assert.PanicsWithValue(t, `ability: "clients.fly" is not in the catalog`, func() {
		MustKnow("clients.fly")
	})
}

func TestCatalogReturnsCopy(t *testing.T) {
	first := Catalog()
	first[0].Name = "mutated"
	assert.False(t, strings.HasPrefix(Catalog()[0].Name, "mutated"))
}

func TestSetCollapsesDuplicatesAndSortsNames(t *testing.T) {
	s := NewSet("clients.show", "clients.index", "clients.show")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("clients.index"))
	assert.False(t, s.Has("clients.delete"))
	assert.Equal(t, []string{"clients.index", "clients.show"}, s.Names())
}
