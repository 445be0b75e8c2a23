package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/domain"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "a", "3"))

	v, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	require.NoError(t, store.Delete(ctx, "a", "b", "never-set"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	testStore(t, store)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, config.TokenKey, "tok"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileStore(path)
	require.NoError(t, err)
	v, err := second.Get(ctx, config.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
}

func TestCredentials_LoginAndClear(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentials(NewMemoryStore())

	token, err := creds.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := creds.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, creds.SaveLogin(ctx, &domain.User{Username: "alice", AccessToken: "tok", TokenType: "bearer"}, "refresh"))

	token, err = creds.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	refresh, err := creds.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh)

	user, err = creds.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, creds.Clear(ctx))
	token, _ = creds.Token(ctx)
	refresh, _ = creds.RefreshToken(ctx)
	user, _ = creds.User(ctx)
	assert.Empty(t, token)
	assert.Empty(t, refresh)
	assert.Nil(t, user)
}

func TestCredentials_CorruptUserRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, config.UserKey, "{not json"))

	_, err := NewCredentials(store).User(ctx)
	assert.Error(t, err)
}
