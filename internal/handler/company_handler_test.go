package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"agendia/internal/handler"
	"agendia/pkg/database"
)

// newHandlerDB points the handlers' database at a sqlmock connection.
func newHandlerDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return mock
}

func companyContext(method, target, paramID string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func noMembershipRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"})
}

func membershipRow(id, userID, companyID uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "company_id", "active"}).
		AddRow(id, userID, companyID, true)
}

func TestDeleteCompanyRejectsNonMember(t *testing.T) {
	mock := newHandlerDB(t)
	// Membership check for (user 1, company 2) comes back empty; nothing
	// else may touch the database.
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(noMembershipRows())

	c, rec := companyContext(http.MethodDelete, "/companies/2", "2", 1)
	require.NoError(t, handler.DeleteCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")
	assert.NoError(t, mock.ExpectationsWereMet(), "no delete may run for a non-member")
}

func TestDeleteCompanyAllowsMember(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(membershipRow(3, 1, 2))
	mock.ExpectExec(`DELETE FROM "companies"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := companyContext(http.MethodDelete, "/companies/2", "2", 1)
	require.NoError(t, handler.DeleteCompany(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCompanyRejectsNonMember(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(noMembershipRows())

	c, rec := companyContext(http.MethodPut, "/companies/2", "2", 1)
	require.NoError(t, handler.UpdateCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateCompanyRejectsNonMember(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(noMembershipRows())

	c, rec := companyContext(http.MethodPost, "/companies/2/deactivate", "2", 1)
	require.NoError(t, handler.DeactivateCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreCompanyRejectsNonMember(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "memberships"`).
		WillReturnRows(noMembershipRows())

	c, rec := companyContext(http.MethodPost, "/companies/2/restore", "2", 1)
	require.NoError(t, handler.RestoreCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyMutationsRequireAuthentication(t *testing.T) {
	newHandlerDB(t)

	for name, h := range map[string]echo.HandlerFunc{
		"update":     handler.UpdateCompany,
		"deactivate": handler.DeactivateCompany,
		"restore":    handler.RestoreCompany,
		"delete":     handler.DeleteCompany,
	} {
		c, rec := companyContext(http.MethodPost, "/companies/2", "2", 0)
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestListCompaniesOnlyActiveMemberCompanies(t *testing.T) {
	mock := newHandlerDB(t)
	// The listing joins memberships and filters on companies.active, so a
	// deactivated company never appears here.
	mock.ExpectQuery(`SELECT .* FROM "companies" JOIN memberships`).
		WithArgs(uint(1), true, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(1, "Studio Hair", true).
			AddRow(2, "Barbearia Central", true))

	c, rec := companyContext(http.MethodGet, "/companies", "", 1)
	require.NoError(t, handler.ListCompanies(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Studio Hair")
	assert.Contains(t, rec.Body.String(), "Barbearia Central")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllCompaniesIncludesInactiveByDefault(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "companies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(1, "Studio Hair", true).
			AddRow(3, "Espaco Zen", false))

	c, rec := companyContext(http.MethodGet, "/admin/companies", "", 1)
	require.NoError(t, handler.ListAllCompanies(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Espaco Zen", "the admin path must surface deactivated companies")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllCompaniesCanFilterToActive(t *testing.T) {
	mock := newHandlerDB(t)
	mock.ExpectQuery(`SELECT .* FROM "companies"`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(1, "Studio Hair", true))

	c, rec := companyContext(http.MethodGet, "/admin/companies?include_inactive=false", "", 1)
	require.NoError(t, handler.ListAllCompanies(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Espaco Zen")
	assert.NoError(t, mock.ExpectationsWereMet())
}
