package migrate

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Store Segments!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_store_segments.sql"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "+goose Up")
	assert.Contains(t, string(body), "+goose Down")
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), "!!!")
	require.Error(t, err)

	_, err = CreateSQLMigration("", "add_orders")
	require.Error(t, err)
}
