// Package integration runs RentFlow's repositories and services against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/infrastructure/migration"
	"github.com/rentflow/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// one container per package run, migrated once
var shared struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a migrated PostgreSQL schema emptied for the current test
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// NewSharedTestDB connects to the package container, starting it on first use
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("PostgreSQL integration tests are skipped with -short")
	}

	dsn := sharedDSN(t)
	tdb := &TestDB{Database: open(t, dsn), t: t}
	t.Cleanup(func() { _ = tdb.Close() })
	tdb.truncate()
	return tdb
}

func sharedDSN(t *testing.T) string {
	shared.Lock()
	defer shared.Unlock()
	if shared.container != nil {
		return shared.dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("rentflow_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("rentflow"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db := open(t, dsn)
	defer db.Close()
	pool, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(pool, migration.EmbeddedSource(), zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply schema")

	shared.container, shared.dsn = container, dsn
	return dsn
}

// open logs SQL through the test logger when TEST_DB_DEBUG is set
func open(t *testing.T, dsn string) *persistence.Database {
	t.Helper()
	sqlLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if os.Getenv("TEST_DB_DEBUG") != "" {
		sqlLog = logger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Info, 100*time.Millisecond)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: sqlLog, TranslateError: true})
	require.NoError(t, err, "connect to postgres")
	pool, err := db.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)
	return persistence.Wrap(db)
}

func (tdb *TestDB) truncate() {
	tdb.t.Helper()
	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE").Error)
}

func (tdb *TestDB) CreateUser(name, email string, roles ...identity.Role) *identity.User {
	tdb.t.Helper()
	u, err := identity.NewUser(name, email, "", roles...)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormUserRepository(tdb.DB).Create(context.Background(), u))
	return u
}

func (tdb *TestDB) CreateProperty(name string, ownerID uuid.UUID) *property.Property {
	tdb.t.Helper()
	p, err := property.NewProperty(name, name+" Street 1", ownerID)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormPropertyRepository(tdb.DB).Create(context.Background(), p))
	return p
}

// CreateTenancy stores an active tenancy starting 2024-01-01
func (tdb *TestDB) CreateTenancy(userID, propertyID uuid.UUID, rent int64, paysUtilities bool) *tenancy.Tenancy {
	tdb.t.Helper()
	ten, err := tenancy.NewTenancy(userID, tenancy.Terms{
		PropertyID:       propertyID,
		FixedMonthlyRent: valueobject.NewMoneyFromInt(rent),
		PaysUtilities:    paysUtilities,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormTenancyRepository(tdb.DB).Create(context.Background(), ten))
	return ten
}

// CleanupSharedContainer stops the container; TestMain calls it after m.Run
func CleanupSharedContainer() {
	shared.Lock()
	defer shared.Unlock()
	if shared.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shared.container.Terminate(ctx)
	shared.container, shared.dsn = nil, ""
}
