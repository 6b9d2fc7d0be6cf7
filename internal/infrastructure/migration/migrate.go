// Package migration applies the versioned SQL schema with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rentflow/backend/migrations"
	"go.uber.org/zap"
)

// Source is either a directory on disk or an fs.FS; FS wins when both are set
type Source struct {
	Path string
	FS   fs.FS
}

func FileSource(path string) Source { return Source{Path: path} }

// EmbeddedSource is the schema compiled into the binary
func EmbeddedSource() Source { return Source{FS: migrations.FS} }

// Status is the applied version relative to the newest file in the source
type Status struct {
	Version uint
	Dirty   bool
	Latest  uint
}

func (s Status) Pending() bool { return s.Version < s.Latest }

type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New binds a Migrator to an open PostgreSQL handle
func New(db *sql.DB, src Source, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	var m *migrate.Migrate
	if src.FS != nil {
		d, ierr := iofs.New(src.FS, ".")
		if ierr != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", ierr)
		}
		m, err = migrate.NewWithInstance("iofs", d, "postgres", driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+src.Path, "postgres", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// apply runs one golang-migrate action. ErrNoChange is success.
func (mg *Migrator) apply(action string, run func() error, fields ...zap.Field) error {
	mg.log.Info("Migration started", append(fields, zap.String("action", action))...)
	err := run()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema already up to date", zap.String("action", action))
		return nil
	case err != nil:
		return fmt.Errorf("migration %s: %w", action, err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migration finished",
		zap.String("action", action),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func (mg *Migrator) Up() error { return mg.apply("up", mg.m.Up) }

// Down rolls every migration back
func (mg *Migrator) Down() error { return mg.apply("down", mg.m.Down) }

// Steps moves n migrations; negative n rolls back
func (mg *Migrator) Steps(n int) error {
	if n == 0 {
		return errors.New("steps must not be zero")
	}
	return mg.apply("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.apply("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

// Version is zero when nothing has been applied yet
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

func (mg *Migrator) Status(src Source) (Status, error) {
	version, dirty, err := mg.Version()
	if err != nil {
		return Status{}, err
	}
	latest, err := LatestVersion(src)
	if err != nil {
		return Status{}, err
	}
	return Status{Version: version, Dirty: dirty, Latest: latest}, nil
}

// Force records version as applied without running anything, clearing a dirty flag
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
