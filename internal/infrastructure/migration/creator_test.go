package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/spicemill/stockledger/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add stock status table", "add_stock_status_table"},
		{"Add-Vendor-GSTIN", "add_vendor_gstin"},
		{"ADD_TASK_INDEX", "add_task_index"},
		{"add__min__level", "add_min_level"},
		{"Seed Spices 2024", "seed_spices_2024"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2024, time.April, 2, 10, 30, 0, 0, time.UTC)

	mf, err := createMigrationAt(dir, "add vendor gstin", "GSTIN column on vendors", now)
	require.NoError(t, err)

	assert.Equal(t, "20240402103000", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20240402103000_add_vendor_gstin.up.sql"), mf.UpPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add vendor gstin")
	assert.Contains(t, string(up), "-- Description: GSTIN column on vendors")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	_, err = createMigrationAt(dir, "add vendor gstin", "", now)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20240402000000_b.up.sql":   {},
		"20240402000000_b.down.sql": {},
		"20240301000000_a.up.sql":   {},
		"20240301000000_a.down.sql": {},
		"README.md":                 {},
		"archive/old.up.sql":        {},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240301000000_a", "20240402000000_b"}, list)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	for _, base := range list {
		_, err := migrations.FS.Open(base + ".down.sql")
		assert.NoError(t, err, "%s has no down migration", base)
	}
}
