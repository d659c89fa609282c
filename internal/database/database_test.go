package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"", "driver is required"},
		{"mysql", "unsupported database driver"},
	}
	for _, tt := range tests {
		_, err := Connect(context.Background(), tt.driver, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestMigrateSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "enfq.db")

	require.NoError(t, Migrate(DriverSQLite, dsn))
	// second run is a no-op
	require.NoError(t, Migrate(DriverSQLite, dsn))

	db, err := Connect(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMigrateUnknownDriver(t *testing.T) {
	err := Migrate("mysql", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
