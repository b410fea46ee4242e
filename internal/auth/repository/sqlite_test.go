package repository

import (
	"context"
	"path/filepath"
	"testing"

	"roomdesigner/internal/auth/models"
	"roomdesigner/internal/common/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background(), "demo", "1234"))
	return repo
}

func TestInitSeedsDemoUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	u, err := repo.GetByCredentials(ctx, "demo", "1234")
	require.NoError(t, err)
	assert.Equal(t, "demo", u.Login)
	assert.Equal(t, "Demo User", u.DisplayName)
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, u.CreatedAt)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)
}

func TestInitIsRepeatable(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	first, err := repo.GetByLogin(ctx, "demo")
	require.NoError(t, err)

	require.NoError(t, repo.Init(ctx, "demo", "changed"))

	again, err := repo.GetByLogin(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "1234", again.Password, "existing password is kept")
}

func TestWrongCredentials(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetByCredentials(ctx, "demo", "12345")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.GetByCredentials(ctx, "admin", "1234")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
