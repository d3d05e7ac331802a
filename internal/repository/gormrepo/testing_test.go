package gormrepo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"careerdesk/internal/config"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() {
		_ = Close(db)
	})

	require.NoError(t, Migrate(db), "migrate test database")
	return db
}
