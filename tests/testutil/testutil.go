// Package testutil holds fixtures shared by RentFlow's tests: databases,
// well-known ids, repository mocks and an event recorder.
package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixtureNamespace = uuid.MustParse("3f0c5a8e-6a52-4d8b-9d53-2b5e0f6a1c11")

// FixtureID derives a stable id from a label, so failures name the same rows every run
func FixtureID(label string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(label))
}

func TestOwnerID() uuid.UUID      { return FixtureID("owner") }
func TestTenantUserID() uuid.UUID { return FixtureID("tenant") }
func TestPropertyID() uuid.UUID   { return FixtureID("property") }

// NewSQLiteDB opens a private in-memory database carrying the full RentFlow schema
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection would open a second, empty memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// NewMockPostgres returns gorm over sqlmock with the postgres dialect.
// Unmet expectations fail the test at cleanup.
func NewMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = conn.Close()
	})
	return db, mock
}
