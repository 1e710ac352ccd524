package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbooks/backend/pkg/database"
)

// newTestDB opens a throwaway SQLite database with the schema applied
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run())
	return db
}
