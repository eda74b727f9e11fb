// Package ability computes the permission set a user holds inside a
// company and defines the closed catalog those permissions come from.
package ability

import "fmt"

// Definition describes one catalog entry. Name is always
// "<category>.<action>" and is the only thing gates compare against.
type Definition struct {
	Name        string
	Category    string
	Action      string
	DisplayName string
	Description string
}

var crudCategories = []struct{ key, label string }{
	{"companies", "Companies"},
	{"users", "Users"},
	{"memberships", "Memberships"},
	{"profiles", "Profiles"},
	{"abilities", "Abilities"},
	{"clients", "Clients"},
	{"services", "Services"},
	{"schedules", "Schedules"},
	{"schedule_blocks", "Schedule blocks"},
	{"appointments", "Appointments"},
}

var crudActions = []struct{ key, label string }{
	{"index", "List"},
	{"show", "View"},
	{"store", "Create"},
	{"update", "Update"},
	{"delete", "Delete"},
}

// extras are abilities outside the plain CRUD grid.
var extras = []Definition{
	{Name: "profiles.sync", Category: "profiles", Action: "sync", DisplayName: "Sync profile abilities", Description: "Replace the ability set attached to a profile"},
	{Name: "companies.restore", Category: "companies", Action: "restore", DisplayName: "Restore companies", Description: "Reactivate a deactivated company"},
	{Name: "companies.index_all", Category: "companies", Action: "index_all", DisplayName: "List all companies", Description: "List every company across tenants, including deactivated ones"},
}

var (
	catalog []Definition
	byName  map[string]Definition
)

func init() {
	for _, c := range crudCategories {
		for _, a := range crudActions {
			catalog = append(catalog, Definition{
				Name:        c.key + "." + a.key,
				Category:    c.key,
				Action:      a.key,
				DisplayName: a.label + " " + c.label,
				Description: fmt.Sprintf("%s %s", a.label, c.label),
			})
		}
	}
	catalog = append(catalog, extras...)

	byName = make(map[string]Definition, len(catalog))
	for _, d := range catalog {
		byName[d.Name] = d
	}
}

// Catalog returns every ability definition, CRUD grid plus extras. The
// seed command persists exactly this list.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	_, ok := byName[name]
	return ok
}

// MustKnow panics when name is not in the catalog. Route setup calls this
// so a typo in a required ability kills the process at startup instead of
// silently denying (or allowing) at request time.
func MustKnow(name string) string {
	if !Known(name) {
		panic(fmt.Sprintf("ability: %q is not in the catalog", name))
	}
	return name
}
