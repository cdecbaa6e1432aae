package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Migration is a single versioned SQL file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies embedded migrations for the dialect of the connected database.
// Applied versions are recorded in the schema_migrations table.
type Migrator struct {
	db  *sqlx.DB
	fs  fs.FS
	now func() time.Time
}

// NewMigrator creates a Migrator reading migrations/<dialect>/*.sql from migrations.
func NewMigrator(db *sqlx.DB, migrations fs.FS) *Migrator {
	return &Migrator{
		db: db,
		fs: migrations,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Dialect returns the migrations directory name for the connection's driver.
func Dialect(db *sqlx.DB) (string, error) {
	switch db.DriverName() {
	case "mysql":
		return "mysql", nil
	case sqliteDriverName:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
}

// Available returns the migrations for the connection's dialect, ordered by version.
func (m *Migrator) Available() ([]Migration, error) {
	dialect, err := Dialect(m.db)
	if err != nil {
		return nil, err
	}
	dir := path.Join("migrations", dialect)

	files, err := fs.ReadDir(m.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("fs.ReadDir(%s) > %w", dir, err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(file.Name(), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(m.fs, path.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("fs.ReadFile(%s) > %w", file.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER NOT NULL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at DATETIME NOT NULL
)`); err != nil {
		return fmt.Errorf("db.ExecContext(create schema_migrations) > %w", err)
	}
	return nil
}

// Applied returns the set of versions already recorded.
func (m *Migrator) Applied(ctx context.Context) (map[int]bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	var versions []int
	if err := m.db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(schema_migrations) > %w", err)
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// Pending returns the migrations not yet applied.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	available, err := m.Available()
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, migration := range available {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Up applies every pending migration in version order and returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, migration := range pending {
		if err := m.apply(ctx, migration); err != nil {
			return i, err
		}
		slog.Default().Info("applied migration",
			"version", migration.Version,
			"name", migration.Name)
	}
	return len(pending), nil
}

// apply runs one migration. MySQL commits DDL implicitly, so the transaction
// only guarantees atomicity on SQLite.
func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(migration.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %04d_%s: tx.ExecContext() > %w", migration.Version, migration.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		migration.Version, migration.Name, m.now()); err != nil {
		return fmt.Errorf("tx.ExecContext(record migration %d) > %w", migration.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

// splitStatements splits a migration file on semicolons.
// Migration files must not contain semicolons inside literals or triggers.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
