package console

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// GuardDecision is the route guard's verdict for a protected view.
type GuardDecision string

const (
	// GuardDefer means the session is still validating: render a loading
	// indicator only, never partial protected content.
	GuardDefer GuardDecision = "defer"
	// GuardAllow renders the protected view.
	GuardAllow GuardDecision = "allow"
	// GuardRedirect sends the visitor to the login entry point.
	GuardRedirect GuardDecision = "redirect"
)

// RouteGuard is a read-only projection of session state. It performs no
// network calls of its own. There is no "return to intended page" memory:
// every redirect lands on the fixed login route.
type RouteGuard struct {
	session     *SessionManager
	logger      Logger
	contextKey  string
	loginRoute  string
	loadingView string
}

// NewRouteGuard builds a guard over the injected session manager.
func NewRouteGuard(session *SessionManager, cfg Config) *RouteGuard {
	return &RouteGuard{
		session:     session,
		logger:      defLogger{},
		contextKey:  cfg.GetContextKey(),
		loginRoute:  cfg.GetLoginRoute(),
		loadingView: cfg.GetLoadingView(),
	}
}

func (g *RouteGuard) WithLogger(logger Logger) *RouteGuard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Check maps the current session state to a decision. Uninitialized counts
// as validating: bootstrap has not finished, so nothing protected renders.
func (g *RouteGuard) Check() GuardDecision {
	switch g.session.State() {
	case StateAuthenticated:
		return GuardAllow
	case StateAnonymous:
		return GuardRedirect
	default:
		return GuardDefer
	}
}

// Protected gates a route on the guard's decision. Authenticated requests
// get the identity injected into request locals under the configured
// context key; anonymous ones are redirected to the login entry point.
func (g *RouteGuard) Protected() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			switch g.Check() {
			case GuardAllow:
				if identity, ok := g.session.Identity(); ok {
					ctx.Locals(g.contextKey, identity)
				}
				return next(ctx)
			case GuardDefer:
				return ctx.Render(g.loadingView, router.ViewContext{
					"message": "Validating session",
				})
			default:
				g.logger.Debug("anonymous visitor redirected from %s", ctx.OriginalURL())
				return ctx.Redirect(g.loginRoute, http.StatusSeeOther)
			}
		}
	}
}

// RequireAction layers a role-policy check on top of Protected. Denials are
// user-visible: the handler receives a distinguishable authorization error
// rendered by the configured error handler.
func (g *RouteGuard) RequireAction(action Action, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = defaultGuardErrHandler
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			identity, ok := g.session.Identity()
			if !ok {
				return errorHandler(ctx, ErrNotAuthenticated)
			}

			if err := Authorize(identity.Role, action); err != nil {
				g.logger.Info("action %s denied for role %s", action, identity.Role)
				return errorHandler(ctx, err)
			}

			return next(ctx)
		}
	}
}

func defaultGuardErrHandler(c router.Context, err error) error {
	return c.Status(http.StatusForbidden).Render("errors/403", router.ViewContext{
		"message": UserMessage(err),
	})
}
