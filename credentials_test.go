package console_test

import (
	"context"
	"testing"

	console "github.com/chronosguard/go-console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() *console.Identity {
	return &console.Identity{
		ID:       "usr-1",
		Username: "ada",
		Email:    "ada@example.com",
		Role:     console.RoleAdmin,
	}
}

func TestMemoryCredentialStore(t *testing.T) {
	ctx := context.Background()
	store := console.NewMemoryCredentialStore()

	_, _, err := store.Get(ctx)
	require.Error(t, err)
	assert.True(t, console.IsNoCredentials(err))

	require.NoError(t, store.Put(ctx, "tok-123", testIdentity()))

	token, identity, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	require.NotNil(t, identity)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, console.RoleAdmin, identity.Role)

	// The store hands out copies, not its internal pointer.
	identity.Email = "mutated@example.com"
	_, fresh, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", fresh.Email)

	require.NoError(t, store.Clear(ctx))
	_, _, err = store.Get(ctx)
	assert.True(t, console.IsNoCredentials(err))
}

func TestMemoryCredentialStoreRejectsPartial(t *testing.T) {
	ctx := context.Background()
	store := console.NewMemoryCredentialStore()

	require.NoError(t, store.Put(ctx, "", testIdentity()))
	_, _, err := store.Get(ctx)
	assert.True(t, console.IsNoCredentials(err))
}

func newTestBunStore(t *testing.T) *console.BunCredentialStore {
	t.Helper()

	db, err := console.OpenCredentialsDB("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := console.NewBunCredentialStore(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestBunCredentialStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newTestBunStore(t)

	_, _, err := store.Get(ctx)
	require.Error(t, err)
	assert.True(t, console.IsNoCredentials(err))

	require.NoError(t, store.Put(ctx, "tok-abc", testIdentity()))

	token, identity, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	require.NotNil(t, identity)
	assert.Equal(t, "usr-1", identity.ID)
	assert.Equal(t, "ada", identity.Username)

	// Second Put replaces both rows rather than duplicating them.
	other := testIdentity()
	other.ID = "usr-2"
	require.NoError(t, store.Put(ctx, "tok-def", other))

	token, identity, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-def", token)
	assert.Equal(t, "usr-2", identity.ID)

	require.NoError(t, store.Clear(ctx))
	_, _, err = store.Get(ctx)
	assert.True(t, console.IsNoCredentials(err))

	// Clear on an already empty store is not an error.
	require.NoError(t, store.Clear(ctx))
}
