package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the shared gorm handle plus the driver it was opened with
type Database struct {
	DB     *gorm.DB
	driver string
}

// Open connects with the configured driver and pool settings. A nil log keeps SQL silent.
func Open(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	sqlLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if log != nil {
		sqlLog = logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel), cfg.SlowThreshold)
	}

	sqliteDriver := cfg.Driver == config.DriverSQLite
	dialector := postgres.Open(cfg.DSN())
	if sqliteDriver {
		dialector = sqlite.Open(cfg.DSN())
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 sqlLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            !sqliteDriver,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	if sqliteDriver {
		// an in-memory database lives only as long as its one connection
		pool.SetMaxOpenConns(1)
	} else {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	d := &Database{DB: db, driver: cfg.Driver}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	return d, nil
}

// Wrap adopts a connection opened elsewhere, such as a test fixture
func Wrap(db *gorm.DB) *Database {
	return &Database{DB: db, driver: db.Dialector.Name()}
}

func (d *Database) Driver() string { return d.driver }

// System is the OpenTelemetry db.system value
func (d *Database) System() string {
	if d.driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql.DB: %w", err)
	}
	return pool, nil
}

func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping backs the readiness check
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Stats snapshots the connection pool
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.pool()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}

func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
