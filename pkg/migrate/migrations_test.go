package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/overnite/manifest-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no %s migration file found", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestClientsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "create_clients")

	checks := []string{
		"CREATE TYPE client_role AS ENUM ('superadmin', 'admin', 'client')",
		"CREATE TABLE IF NOT EXISTS shipping_plans",
		"CREATE TABLE IF NOT EXISTS clients",
		"CONSTRAINT clients_email_key UNIQUE (email)",
		"FOREIGN KEY (shipping_plan_id) REFERENCES shipping_plans(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS clients",
		"DROP TYPE IF EXISTS client_role",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestShippingRatesMigrationNormalizesLanes(t *testing.T) {
	content := readMigration(t, "create_shipping_rates")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS shipping_rates",
		"minimum_weight numeric(10,3) NOT NULL",
		"CHECK (origin = upper(btrim(origin)))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shipping_rates_lane_plan",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shipping_rates_lane_default",
		"DROP TABLE IF EXISTS shipping_rates",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestManifestsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_manifests")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS manifest_infos",
		"CONSTRAINT manifest_infos_manifest_no_key UNIQUE (manifest_no)",
		"deleted_at timestamptz NULL",
		"CREATE TABLE IF NOT EXISTS manifest_lists",
		"FOREIGN KEY (manifest_info_id) REFERENCES manifest_infos(id) ON DELETE CASCADE",
		"CHECK (discount IS NULL OR (discount >= 0 AND discount <= 100))",
		"CREATE INDEX IF NOT EXISTS idx_manifest_lists_cn_no ON manifest_lists (cn_no)",
		"DROP TABLE IF EXISTS manifest_lists",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
	if strings.Contains(content, "UNIQUE (cn_no)") {
		t.Error("cn_no must not carry a unique constraint")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
	require.NoError(t, migrate.ValidateFS(migrate.Embedded(), "migrations"))
}

func TestValidateFSRejectsBadMigrations(t *testing.T) {
	badName := fstest.MapFS{
		"m/create_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	require.Error(t, migrate.ValidateFS(badName, "m"))

	missingDown := fstest.MapFS{
		"m/20240101000000_create_things.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
	}
	require.Error(t, migrate.ValidateFS(missingDown, "m"))

	duplicate := fstest.MapFS{
		"m/20240101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"m/20240101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	require.Error(t, migrate.ValidateFS(duplicate, "m"))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Remarks Index!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_remarks_index.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}
