package console

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions and data for authentication-aware
// templates, meant for a view engine's global-data hook.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"admin" %}
//	{% if current_user|can_access:"retrain-model" %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"has_role":         hasRole,
		"can_access":       canAccess,

		// Role constants for easy template access
		"roles": map[string]string{
			"admin":   RoleAdmin,
			"analyst": RoleAnalyst,
			"viewer":  RoleViewer,
		},
	}
}

// TemplateHelpersWithIdentity injects a specific identity as current_user.
func TemplateHelpersWithIdentity(identity *Identity) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateUserKey] = identity
	return helpers
}

// TemplateHelpersWithRouter pulls the current identity out of router locals,
// where the route guard stored it.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()
	if identity := ctx.Locals(userKey); identity != nil {
		helpers[TemplateUserKey] = identity
	}
	return helpers
}

// isAuthenticated checks if the provided identity object is usable
func isAuthenticated(identity any) bool {
	switch u := identity.(type) {
	case *Identity:
		return u != nil
	case Identity:
		return true
	case map[string]any:
		// Handle JSON-converted identity objects
		return len(u) > 0
	default:
		return false
	}
}

// hasRole checks if the identity carries the specified role
func hasRole(identity any, role string) bool {
	switch u := identity.(type) {
	case *Identity:
		if u == nil {
			return false
		}
		return u.Role == UserRole(role)
	case Identity:
		return u.Role == UserRole(role)
	case map[string]any:
		if raw, exists := u["role"]; exists {
			if roleStr, ok := raw.(string); ok {
				return roleStr == role
			}
		}
		return false
	default:
		return false
	}
}

// canAccess checks the role policy for a named action
func canAccess(identity any, action string) bool {
	switch u := identity.(type) {
	case *Identity:
		if u == nil {
			return false
		}
		return Can(u.Role, Action(action))
	case Identity:
		return Can(u.Role, Action(action))
	case map[string]any:
		if raw, exists := u["role"]; exists {
			if roleStr, ok := raw.(string); ok {
				return Can(UserRole(roleStr), Action(action))
			}
		}
		return false
	default:
		return false
	}
}
