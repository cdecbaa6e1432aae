// Package testutil provides shared test helpers for config files, seed files and migrated databases.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/schemas"
)

// SampleSeed is a small dictionary in the seed file format.
const SampleSeed = `entries:
  - headword: maram
    pos: noun
    senses:
      - tree
      - wood
  - headword: marakkuka
    pos: [verb]
    senses:
      - to forget
  - headword: vellam
    pos: noun
    senses:
      - water
`

// SetupTestConfig creates a config file pointing at an SQLite database inside tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
search:
  result_limit: 20
  cache_size: 0
`, filepath.Join(tmpDir, "dictionary.db"))

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// CreateSeedFile writes content (SampleSeed when empty) to tmpDir/name and returns its path.
func CreateSeedFile(t *testing.T, tmpDir, name, content string) string {
	t.Helper()

	if content == "" {
		content = SampleSeed
	}
	path := filepath.Join(tmpDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// OpenTestDB opens a fresh SQLite database in a temp directory with all migrations applied.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "dictionary.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = database.NewMigrator(db, schemas.Migrations).Up(context.Background())
	require.NoError(t, err)
	return db
}
