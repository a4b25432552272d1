package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add remarks table", "add_remarks_table"},
		{"Add-Remarks-Table", "add_remarks_table"},
		{"ADD_REMARKS_TABLE", "add_remarks_table"},
		{"add__remarks__table", "add_remarks_table"},
		{"Index PRO 2026", "index_pro_2026"},
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

func TestCreateMigration_FirstInEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "add remarks table", "Remarks per PRO")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_remarks_table.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_remarks_table.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add remarks table")
	assert.Contains(t, string(up), "Remarks per PRO")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
}

func TestCreateMigration_NumbersAfterNewest(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"000001_init_schema.up.sql", "000001_init_schema.down.sql", "000007_late.up.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}

	mf, err := CreateMigration(dir, "document items", "")
	require.NoError(t, err)

	assert.Equal(t, "000008", mf.Version)
	assert.FileExists(t, filepath.Join(dir, "000008_document_items.up.sql"))
}

func TestCreateMigration_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateMigration(dir, "one", "")
	require.NoError(t, err)
	// Leaves 000001_one.down.sql behind, so the next pair collides with it
	require.NoError(t, os.Remove(filepath.Join(dir, "000001_one.up.sql")))

	mf, err := CreateMigration(dir, "one", "")
	require.Error(t, err)
	assert.Nil(t, mf)
	assert.NoFileExists(t, filepath.Join(dir, "000001_one.up.sql"))
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_documents.up.sql":     {Data: []byte("-- up")},
		"000002_documents.down.sql":   {Data: []byte("-- down")},
		"000001_init_schema.up.sql":   {Data: []byte("-- up")},
		"000001_init_schema.down.sql": {Data: []byte("-- down")},
		"README.md":                   {Data: []byte("docs")},
		"embed.go":                    {Data: []byte("package migrations")},
		"archive.up.sql/old.sql":      {Data: []byte("-- nested")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_documents"}, names)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)
}
