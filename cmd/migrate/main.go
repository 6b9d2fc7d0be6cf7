// Command migrate manages the RentFlow PostgreSQL schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

// env is what a subcommand runs against. m is nil for file-only commands.
type env struct {
	log  *zap.Logger
	dir  string
	src  migration.Source
	m    *migration.Migrator
	args []string
}

type command struct {
	usage   string
	summary string
	minArgs int
	offline bool // works on migration files, no database needed
	run     func(e *env) error
}

var commands = map[string]command{
	"up":   {usage: "up", summary: "Apply all pending migrations", run: func(e *env) error { return e.m.Up() }},
	"down": {usage: "down", summary: "Roll back all migrations", run: func(e *env) error { return e.m.Down() }},
	"steps": {usage: "steps <n>", summary: "Apply n migrations, negative rolls back", minArgs: 1, run: func(e *env) error {
		n, err := strconv.Atoi(e.args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", e.args[0])
		}
		return e.m.Steps(n)
	}},
	"goto": {usage: "goto <version>", summary: "Migrate up or down to a version", minArgs: 1, run: func(e *env) error {
		v, err := strconv.ParseUint(e.args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", e.args[0])
		}
		return e.m.GoTo(uint(v))
	}},
	"force": {usage: "force <version>", summary: "Clear a dirty state by setting the version", minArgs: 1, run: func(e *env) error {
		v, err := strconv.Atoi(e.args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", e.args[0])
		}
		return e.m.Force(v)
	}},
	"status": {usage: "status", summary: "Show applied and latest versions", run: status},
	"create": {usage: "create <name>", summary: "Write the next up/down file pair", minArgs: 1, offline: true, run: func(e *env) error {
		mf, err := migration.CreateMigration(e.dir, e.args[0])
		if err != nil {
			return err
		}
		e.log.Info("Migration created", zap.Uint("version", mf.Version), zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	}},
	"list": {usage: "list", summary: "List available migrations", offline: true, run: func(e *env) error {
		names, err := migration.ListMigrations(e.src)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return nil
	}},
}

func init() {
	commands["version"] = commands["status"]
}

func status(e *env) error {
	st, err := e.m.Status(e.src)
	if err != nil {
		return err
	}
	e.log.Info("Migration status",
		zap.Uint("version", st.Version),
		zap.Uint("latest", st.Latest),
		zap.Bool("dirty", st.Dirty),
		zap.Bool("pending", st.Pending()),
	)
	return nil
}

func main() {
	dir := flag.String("path", "migrations", "Migrations directory")
	databaseURL := flag.String("database", "", "PostgreSQL URL (default: DSN from RENTFLOW_DATABASE_*)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	embedded := flag.Bool("embedded", false, "Use the migrations compiled into the binary")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, cmd, name, *dir, *databaseURL, *embedded, flag.Args()[1:]); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

func run(log *zap.Logger, cmd command, name, dir, databaseURL string, embedded bool, args []string) error {
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: migrate %s", cmd.usage)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	e := &env{log: log, dir: abs, src: migration.FileSource(abs), args: args}
	if embedded {
		e.src = migration.EmbeddedSource()
	}
	log.Info("Running migration command", zap.String("command", name), zap.String("path", abs), zap.Bool("embedded", embedded))

	if cmd.offline {
		return cmd.run(e)
	}

	if databaseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if cfg.Database.Driver != config.DriverPostgres {
			return errors.New("SQL migrations target PostgreSQL only, driver is " + cfg.Database.Driver)
		}
		databaseURL = cfg.Database.DSN()
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	e.m, err = migration.New(db, e.src, log)
	if err != nil {
		return err
	}
	defer e.m.Close()
	return cmd.run(e)
}

func usage() {
	fmt.Fprintln(os.Stderr, "RentFlow database migration tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		if n != "version" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", commands[n].usage, commands[n].summary)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nExamples:\n  migrate up\n  migrate steps -1\n  migrate create add_late_fee")
}
