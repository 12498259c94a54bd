package main

import (
	"context"
	"path/filepath"
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := database.Open(ctx, database.DialectSQLite, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, database.Migrate(ctx, store.SQL, store.Dialect, logger.Discard()))

	require.NoError(t, seed(ctx, store, "Sup3r$ecret", logger.Discard()))
	// second run must not duplicate anything
	require.NoError(t, seed(ctx, store, "Sup3r$ecret", logger.Discard()))

	users := user.NewService(user.NewSQLiteRepo(store.SQL))
	books := book.NewService(book.NewSQLiteRepo(store.SQL))

	for _, du := range demoUsers {
		u, err := users.GetByUsername(ctx, du.Username)
		require.NoError(t, err)

		owned, err := books.List(ctx, u.ID)
		require.NoError(t, err)
		titles := make([]string, 0, len(owned))
		for _, b := range owned {
			titles = append(titles, b.Title)
		}
		if len(du.Books) == 0 {
			assert.Empty(t, titles)
			continue
		}
		assert.Equal(t, du.Books, titles)
	}
}
