package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationBumpsPastNewestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add statement index", now)
	require.NoError(t, err)
	require.Equal(t, "20300101000001_add_statement_index.sql", filepath.Base(path))

	path, err = createSQLMigration(t.TempDir(), "x", now)
	require.NoError(t, err)
	require.Equal(t, "20250301080000_x.sql", filepath.Base(path))
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	_, err := createSQLMigration(t.TempDir(), " !! ", time.Now())
	require.Error(t, err)
}
