package tenancy_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"agendia/internal/model"
	"agendia/internal/tenancy"
)

// newDryRunDB opens gorm in dry-run mode over a sqlmock connection, so
// tests can inspect the SQL the plugin produces without a real database.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	plugin := tenancy.NewPlugin()
	plugin.Register(&model.Client{}, &model.Service{}, &model.Appointment{})
	require.NoError(t, db.Use(plugin))
	return db
}

func TestQueryScopedToActiveCompany(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	var clients []model.Client
	tx := db.WithContext(ctx).Find(&clients)
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"clients"."company_id" =`)
	assert.Contains(t, tx.Statement.Vars, uint(7))
}

func TestQueryWithoutCompanyIsUnscoped(t *testing.T) {
	db := newDryRunDB(t)

	var clients []model.Client
	tx := db.WithContext(context.Background()).Find(&clients)
	require.NoError(t, tx.Error)

	assert.NotContains(t, tx.Statement.SQL.String(), "company_id")
}

func TestBypassSkipsFilter(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithBypass(tenancy.WithCompany(context.Background(), 7))

	var clients []model.Client
	tx := db.WithContext(ctx).Find(&clients)
	require.NoError(t, tx.Error)

	assert.NotContains(t, tx.Statement.SQL.String(), "company_id")
}

func TestForcedCompanyOverridesAmbient(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithForcedCompany(tenancy.WithCompany(context.Background(), 7), 9)

	var clients []model.Client
	tx := db.WithContext(ctx).Find(&clients)
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.Vars, uint(9))
	assert.NotContains(t, tx.Statement.Vars, uint(7))
}

func TestUnregisteredModelUntouched(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	// Memberships carry a company_id column but are not tenant-owned.
	var memberships []model.Membership
	tx := db.WithContext(ctx).Find(&memberships)
	require.NoError(t, tx.Error)

	assert.NotContains(t, tx.Statement.SQL.String(), `"memberships"."company_id"`)
}

func TestCreateStampsActiveCompany(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	client := model.Client{Name: "Ana Souza"}
	tx := db.WithContext(ctx).Create(&client)
	require.NoError(t, tx.Error)

	assert.Equal(t, uint(7), client.CompanyID)
}

func TestCreateKeepsExplicitCompany(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	client := model.Client{Name: "Ana Souza", CompanyID: 3}
	tx := db.WithContext(ctx).Create(&client)
	require.NoError(t, tx.Error)

	assert.Equal(t, uint(3), client.CompanyID)
}

func TestCreateStampsEveryRecordInBatch(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	services := []model.Service{
		{Name: "Corte", DurationMinutes: 30},
		{Name: "Barba", DurationMinutes: 20, CompanyID: 3},
	}
	tx := db.WithContext(ctx).Create(&services)
	require.NoError(t, tx.Error)

	assert.Equal(t, uint(7), services[0].CompanyID)
	assert.Equal(t, uint(3), services[1].CompanyID)
}

func TestCreateWithoutCompanyLeavesZero(t *testing.T) {
	db := newDryRunDB(t)

	client := model.Client{Name: "Ana Souza"}
	tx := db.WithContext(context.Background()).Create(&client)
	require.NoError(t, tx.Error)

	assert.Zero(t, client.CompanyID)
}

func TestUpdateScopedToActiveCompany(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	tx := db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", 1).Update("name", "Ana Lima")
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"clients"."company_id" =`)
	assert.Contains(t, tx.Statement.Vars, uint(7))
}

func TestDeleteScopedToActiveCompany(t *testing.T) {
	db := newDryRunDB(t)
	ctx := tenancy.WithCompany(context.Background(), 7)

	tx := db.WithContext(ctx).Delete(&model.Client{}, 1)
	require.NoError(t, tx.Error)

	assert.Contains(t, tx.Statement.SQL.String(), `"clients"."company_id" =`)
	assert.Contains(t, tx.Statement.Vars, uint(7))
}
