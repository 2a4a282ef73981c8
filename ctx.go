package console

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the Identity in the given context
func WithIdentityContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*Identity)
	return raw, ok
}

// IdentityFromRouter extracts the identity the route guard stored in
// request locals.
func IdentityFromRouter(ctx router.Context, key string) (*Identity, bool) {
	if key == "" {
		key = "current_user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(*Identity)
	return identity, ok
}

// CanFromRouter checks the role policy for the identity on the request.
func CanFromRouter(ctx router.Context, key string, action Action) bool {
	identity, ok := IdentityFromRouter(ctx, key)
	if !ok {
		return false
	}
	return Can(identity.Role, action)
}
