package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/schemas"
)

func openTempSQLite(t *testing.T) *Migrator {
	t.Helper()
	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "dictionary.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewMigrator(db, schemas.Migrations)
}

func TestMigrator_Up(t *testing.T) {
	ctx := context.Background()
	migrator := openTempSQLite(t)

	applied, err := migrator.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	var tables []string
	require.NoError(t, migrator.db.Select(&tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('entries', 'entry_parts_of_speech', 'entry_senses') ORDER BY name"))
	assert.Equal(t, []string{"entries", "entry_parts_of_speech", "entry_senses"}, tables)

	applied, err = migrator.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	pending, err := migrator.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMigrator_Available(t *testing.T) {
	migrator := openTempSQLite(t)
	migrator.fs = fstest.MapFS{
		"migrations/sqlite/0002_add_index.sql":  {Data: []byte("CREATE INDEX a ON t (b);")},
		"migrations/sqlite/0001_create.sql":     {Data: []byte("CREATE TABLE t (b TEXT);")},
		"migrations/sqlite/README.md":           {Data: []byte("notes")},
		"migrations/sqlite/nonumber_create.sql": {Data: []byte("SELECT 1;")},
		"migrations/mysql/0001_create.sql":      {Data: []byte("CREATE TABLE t (b TEXT);")},
	}

	got, err := migrator.Available()
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: 1, Name: "create", SQL: "CREATE TABLE t (b TEXT);"},
		{Version: 2, Name: "add_index", SQL: "CREATE INDEX a ON t (b);"},
	}, got)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "multiple statements",
			sql:  "CREATE TABLE a (x INT);\n\nCREATE TABLE b (y INT);\n",
			want: []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"},
		},
		{
			name: "no trailing semicolon",
			sql:  "CREATE TABLE a (x INT)",
			want: []string{"CREATE TABLE a (x INT)"},
		},
		{
			name: "blank",
			sql:  " ;\n; ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitStatements(tt.sql))
		})
	}
}
