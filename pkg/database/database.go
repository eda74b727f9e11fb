package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agendia/internal/model"
	"agendia/internal/tenancy"
	"agendia/pkg/config"
)

// DB is the global database instance
var DB *gorm.DB

// Init opens the database connection and installs the tenancy plugin with
// every tenant-owned model registered. Anything reading or writing those
// models through DB is scoped to the request's active company from here on.
func Init(dbConfig *config.DBConfig) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	plugin := tenancy.NewPlugin()
	plugin.Register(TenantOwnedModels()...)
	if err := db.Use(plugin); err != nil {
		return nil, fmt.Errorf("failed to install tenancy plugin: %w", err)
	}

	DB = db
	return db, nil
}

// TenantOwnedModels lists every model confined to a company. New
// tenant-owned models are opted in here and nowhere else.
func TenantOwnedModels() []any {
	return []any{
		&model.Client{},
		&model.Service{},
		&model.Schedule{},
		&model.ScheduleBlock{},
		&model.Appointment{},
	}
}

// AllModels lists every persisted model, in migration order.
func AllModels() []any {
	return append([]any{
		&model.User{},
		&model.Company{},
		&model.Profile{},
		&model.Ability{},
		&model.Membership{},
	}, TenantOwnedModels()...)
}

// Migrate runs migrations for every model
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	if err := DB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
