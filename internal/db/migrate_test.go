package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	up, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, up)
	assert.Len(t, down, len(up))
}

func TestSchemaRestrictsCategoryDelete(t *testing.T) {
	b, err := migrationFiles.ReadFile("migrations/000001_storefront.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "REFERENCES categories (id) ON DELETE RESTRICT")
}
