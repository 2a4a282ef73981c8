package console_test

import (
	"context"
	"testing"

	console "github.com/chronosguard/go-console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteGuardCheck(t *testing.T) {
	t.Run("uninitialized session defers", func(t *testing.T) {
		session := console.NewSessionManager(newFakeGateway(), console.NewMemoryCredentialStore())
		guard := console.NewRouteGuard(session, console.SimpleConfig{})

		assert.Equal(t, console.GuardDefer, guard.Check())
	})

	t.Run("anonymous session redirects", func(t *testing.T) {
		session := console.NewSessionManager(newFakeGateway(), console.NewMemoryCredentialStore())
		_, err := session.Bootstrap(context.Background())
		require.NoError(t, err)

		guard := console.NewRouteGuard(session, console.SimpleConfig{})
		assert.Equal(t, console.GuardRedirect, guard.Check())
	})

	t.Run("authenticated session allows", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.loginFn = func(ctx context.Context, email, password string) (*console.AuthResult, error) {
			return adminResult("tok-guard"), nil
		}

		session := console.NewSessionManager(gateway, console.NewMemoryCredentialStore())
		_, err := session.Login(context.Background(), "ada@example.com", "secret123")
		require.NoError(t, err)

		guard := console.NewRouteGuard(session, console.SimpleConfig{})
		assert.Equal(t, console.GuardAllow, guard.Check())
	})
}

func TestRouteGuardCheckAfterLogout(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.loginFn = func(ctx context.Context, email, password string) (*console.AuthResult, error) {
		return adminResult("tok-guard"), nil
	}

	session := console.NewSessionManager(gateway, console.NewMemoryCredentialStore())
	_, err := session.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)

	guard := console.NewRouteGuard(session, console.SimpleConfig{})
	require.Equal(t, console.GuardAllow, guard.Check())

	require.NoError(t, session.Logout(ctx))
	assert.Equal(t, console.GuardRedirect, guard.Check())
}
