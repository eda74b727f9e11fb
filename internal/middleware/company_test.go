package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"agendia/internal/middleware"
	"agendia/internal/tenancy"
	"agendia/pkg/jwtutil"
)

func staticLookup(companyID uint, found bool, err error) middleware.CompanyLookup {
	return func(context.Context, uint) (uint, bool, error) {
		return companyID, found, err
	}
}

type resolveRequest struct {
	header string
	userID uint
	claims *jwtutil.UserClaims
	lookup middleware.CompanyLookup
}

// runResolve runs ResolveCompany and reports the tenant the downstream
// handler observed on the request context.
func runResolve(t *testing.T, req resolveRequest) (uint, bool) {
	t.Helper()

	e := echo.New()
	r := httptest.NewRequest(http.MethodGet, "/clients", nil)
	if req.header != "" {
		r.Header.Set(middleware.CompanyHeader, req.header)
	}
	c := e.NewContext(r, httptest.NewRecorder())
	if req.userID != 0 {
		c.Set("user_id", req.userID)
	}
	if req.claims != nil {
		c.Set("claims", req.claims)
	}

	var (
		resolved uint
		ok       bool
	)
	handler := middleware.ResolveCompany(req.lookup)(func(c echo.Context) error {
		resolved, ok = tenancy.CompanyFromContext(c.Request().Context())
		return nil
	})
	require.NoError(t, handler(c))
	return resolved, ok
}

func pinned(companyID uint) *jwtutil.UserClaims {
	return &jwtutil.UserClaims{UserID: 1, CompanyID: &companyID}
}

func TestResolveCompanyFromHeader(t *testing.T) {
	id, ok := runResolve(t, resolveRequest{header: "7", userID: 1})
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
}

func TestResolveCompanyHeaderBeatsClaimAndMembership(t *testing.T) {
	id, ok := runResolve(t, resolveRequest{
		header: "7",
		userID: 1,
		claims: pinned(9),
		lookup: staticLookup(5, true, nil),
	})
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
}

func TestResolveCompanyMalformedHeaderFallsThrough(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "0", "7x"} {
		id, ok := runResolve(t, resolveRequest{
			header: raw,
			userID: 1,
			lookup: staticLookup(5, true, nil),
		})
		assert.True(t, ok, "header %q", raw)
		assert.Equal(t, uint(5), id, "malformed header %q must be ignored", raw)
	}
}

func TestResolveCompanyFromPinnedClaim(t *testing.T) {
	id, ok := runResolve(t, resolveRequest{userID: 1, claims: pinned(9)})
	assert.True(t, ok)
	assert.Equal(t, uint(9), id)
}

func TestResolveCompanyFromEarliestMembership(t *testing.T) {
	id, ok := runResolve(t, resolveRequest{userID: 1, lookup: staticLookup(5, true, nil)})
	assert.True(t, ok)
	assert.Equal(t, uint(5), id)
}

func TestResolveCompanyNoneForUserWithoutMemberships(t *testing.T) {
	_, ok := runResolve(t, resolveRequest{userID: 1, lookup: staticLookup(0, false, nil)})
	assert.False(t, ok, "a user in no company must resolve to no tenant")
}

func TestResolveCompanyNoneForAnonymous(t *testing.T) {
	_, ok := runResolve(t, resolveRequest{lookup: staticLookup(5, true, nil)})
	assert.False(t, ok)
}

func TestResolveCompanyLookupErrorLeavesNoTenant(t *testing.T) {
	_, ok := runResolve(t, resolveRequest{
		userID: 1,
		lookup: staticLookup(0, false, errors.New("connection refused")),
	})
	assert.False(t, ok)
}

func newLookupDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestMembershipCompanyLookupFindsEarliestMembership(t *testing.T) {
	db, mock := newLookupDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company_id", "active"}).
			AddRow(3, 1, 5, true))

	id, found, err := middleware.MembershipCompanyLookup(db)(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(5), id)
}

func TestMembershipCompanyLookupNoMembershipIsNotAnError(t *testing.T) {
	db, mock := newLookupDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := middleware.MembershipCompanyLookup(db)(context.Background(), 1)
	require.NoError(t, err, "a user with no memberships is a miss, not a failure")
	assert.False(t, found)
}
