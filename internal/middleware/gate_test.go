package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendia/internal/ability"
	"agendia/internal/middleware"
	"agendia/internal/tenancy"
)

type membershipKey struct{ userID, companyID uint }

type fakeAbilityStore struct {
	memberships map[membershipKey]uint
	profiles    map[uint][]ability.Record
}

func (f *fakeAbilityStore) MembershipProfile(_ context.Context, userID, companyID uint) (uint, bool, error) {
	profileID, ok := f.memberships[membershipKey{userID, companyID}]
	return profileID, ok, nil
}

func (f *fakeAbilityStore) ProfileAbilities(_ context.Context, profileID uint) ([]ability.Record, error) {
	return f.profiles[profileID], nil
}

// twoCompanyResolver grants user 1 a read-only profile in company 7 and a
// full clients profile in company 9.
func twoCompanyResolver() *ability.Resolver {
	store := &fakeAbilityStore{
		memberships: map[membershipKey]uint{{1, 7}: 10, {1, 9}: 20},
		profiles: map[uint][]ability.Record{
			10: {{Name: "clients.index"}, {Name: "clients.show"}},
			20: {{Name: "clients.index"}, {Name: "clients.show"}, {Name: "clients.store"}, {Name: "clients.update"}, {Name: "clients.delete"}},
		},
	}
	return ability.NewResolver(store, nil, 0)
}

type gateRequest struct {
	userID    uint
	companyID uint
}

func runGate(t *testing.T, required string, req gateRequest) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	r := httptest.NewRequest(http.MethodDelete, "/clients/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)

	if req.userID != 0 {
		c.Set("user_id", req.userID)
	}
	if req.companyID != 0 {
		ctx := tenancy.WithCompany(r.Context(), req.companyID)
		c.SetRequest(r.WithContext(ctx))
	}

	invoked := false
	handler := middleware.RequireAbility(twoCompanyResolver(), required)(func(c echo.Context) error {
		invoked = true
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, handler(c))
	return rec, invoked
}

func TestGateRejectsAnonymous(t *testing.T) {
	rec, invoked := runGate(t, "clients.delete", gateRequest{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, invoked, "handler must not run for anonymous requests")
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestGateRejectsWithoutActiveCompany(t *testing.T) {
	rec, invoked := runGate(t, "clients.delete", gateRequest{userID: 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, invoked)
	assert.Contains(t, rec.Body.String(), "no active company context")
}

func TestGateRejectsMissingAbility(t *testing.T) {
	rec, invoked := runGate(t, "clients.delete", gateRequest{userID: 1, companyID: 7})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, invoked, "handler must not run when the ability is missing")
	assert.Contains(t, rec.Body.String(), `"required":"clients.delete"`)
	// The response names only the required ability, never what was granted.
	assert.NotContains(t, rec.Body.String(), "clients.index")
}

func TestGateAllowsGrantedAbility(t *testing.T) {
	rec, invoked := runGate(t, "clients.delete", gateRequest{userID: 1, companyID: 9})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, invoked)
}

func TestGateSameUserDifferentCompanies(t *testing.T) {
	// Read access works in both companies, deletion only where the
	// profile grants it.
	rec, _ := runGate(t, "clients.index", gateRequest{userID: 1, companyID: 7})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = runGate(t, "clients.delete", gateRequest{userID: 1, companyID: 7})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = runGate(t, "clients.delete", gateRequest{userID: 1, companyID: 9})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRejectsUsersWithoutMembership(t *testing.T) {
	rec, invoked := runGate(t, "clients.index", gateRequest{userID: 2, companyID: 7})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, invoked)
}

func TestGatePanicsOnUnknownAbility(t *testing.T) {
	assert.Panics(t, func() {
		middleware.RequireAbility(twoCompanyResolver(), "clients.fly")
	})
}
