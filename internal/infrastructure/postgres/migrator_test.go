package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_MissingPath(t *testing.T) {
	err := RunMigrations("postgres://localhost:5432/remit", "testdata/does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrate instance")
}

func TestRunMigrations_UnknownDatabaseScheme(t *testing.T) {
	err := RunMigrations("bogus://localhost/remit", t.TempDir())
	require.Error(t, err)
}

func TestRunMigrationsDown_MissingPath(t *testing.T) {
	err := RunMigrationsDown("postgres://localhost:5432/remit", "testdata/does-not-exist")
	require.Error(t, err)
}
