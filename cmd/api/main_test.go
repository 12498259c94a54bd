package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_SQLite(t *testing.T) {
	store, err := database.Open(context.Background(), database.DialectSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	bookRepo, userRepo := repositories(store, time.Second)
	assert.IsType(t, &book.SQLiteRepo{}, bookRepo)
	assert.IsType(t, &user.SQLiteRepo{}, userRepo)
}

func TestAllReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := errors.New("redis down")
	failing := func(context.Context) error { return down }

	assert.NoError(t, allReady()(context.Background()))
	assert.NoError(t, allReady(ok, ok)(context.Background()))
	assert.ErrorIs(t, allReady(ok, failing)(context.Background()), down)
}
