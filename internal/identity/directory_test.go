package identity

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/internal/storage/sqlite"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewDirectory(store)
}

func TestValidPrivateID(t *testing.T) {
	assert.True(t, ValidPrivateID(NewPrivateID()))
	assert.True(t, ValidPrivateID("abcdefghijklmnopqrstuvwxyz0123456789"))
	assert.False(t, ValidPrivateID(""))
	assert.False(t, ValidPrivateID("too-short"))
	assert.False(t, ValidPrivateID("0b5c7a3e-2f1d-4c8e-9a6b-1d2e3f4a5b6c "))
	assert.False(t, ValidPrivateID("0b5c7a3e_2f1d_4c8e_9a6b_1d2e3f4a5b6c"))
}

func TestDirectory_Upsert(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()
	privateID := NewPrivateID()

	user, err := dir.Upsert(ctx, privateID, "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)

	t.Run("rename keeps public id", func(t *testing.T) {
		user, err := dir.Upsert(ctx, privateID, "alice", "  Alice Cooper ")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.ID)
		assert.Equal(t, "Alice Cooper", user.Name)

		name, err := dir.DisplayName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice Cooper", name)
	})

	t.Run("mismatched public id conflicts", func(t *testing.T) {
		_, err := dir.Upsert(ctx, privateID, "not-alice", "Alice")
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := dir.Upsert(ctx, "short", "x", "Name")
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = dir.Upsert(ctx, NewPrivateID(), "", "Name")
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = dir.Upsert(ctx, NewPrivateID(), "bob", " ")
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestDirectory_Register(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	t.Run("first call mints credentials", func(t *testing.T) {
		user, err := dir.Register(ctx, "", "Bob")
		require.NoError(t, err)
		assert.True(t, ValidPrivateID(user.PrivateID))
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, user.ID, user.PrivateID)
	})

	t.Run("known credential keeps identity", func(t *testing.T) {
		first, err := dir.Register(ctx, "", "Carol")
		require.NoError(t, err)

		second, err := dir.Register(ctx, first.PrivateID, "Caroline")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.PrivateID, second.PrivateID)
		assert.Equal(t, "Caroline", second.Name)
	})

	t.Run("unknown credential mints a new identity", func(t *testing.T) {
		stale := NewPrivateID()
		user, err := dir.Register(ctx, stale, "Dave")
		require.NoError(t, err)
		assert.NotEqual(t, stale, user.PrivateID)
	})

	t.Run("concurrent renames converge", func(t *testing.T) {
		user, err := dir.Register(ctx, "", "Erin")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := dir.Register(ctx, user.PrivateID, "Erin")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := dir.Resolve(ctx, user.PrivateID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestDirectory_ResolveAndAuthenticate(t *testing.T) {
	dir := newTestDirectory(t)
	ctx := context.Background()

	user, err := dir.Register(ctx, "", "Frank")
	require.NoError(t, err)

	got, err := dir.Resolve(ctx, user.PrivateID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Frank", got.Name)

	_, err = dir.Resolve(ctx, NewPrivateID())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = dir.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = dir.Authenticate(ctx, "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = dir.Authenticate(ctx, NewPrivateID())
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	authed, err := dir.Authenticate(ctx, user.PrivateID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}
