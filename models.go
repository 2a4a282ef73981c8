package console

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the console role label
type UserRole = string

const (
	// RoleAdmin can manage employees and tune the detection pipeline
	RoleAdmin UserRole = "admin"
	// RoleAnalyst is a first-class role in the policy table, yet no code
	// path ever assigns it: the remote service only exposes an is_admin
	// flag. Kept as observed rather than silently repaired.
	RoleAnalyst UserRole = "analyst"
	// RoleViewer gets read-only access to every console view
	RoleViewer UserRole = "viewer"
)

// Identity is the authenticated user as the console sees it. Role is
// derived, not stored independently by the remote service.
type Identity struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// RoleFromAdminFlag collapses the remote is_admin boolean into a role.
// The mapping never produces RoleAnalyst.
func RoleFromAdminFlag(isAdmin bool) UserRole {
	if isAdmin {
		return RoleAdmin
	}
	return RoleViewer
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleAnalyst, RoleViewer}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// DirectoryEntry is the administrative projection of a registered identity,
// one row of the employee-management view.
type DirectoryEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// CredentialRecord is one row of the persisted session mirror. Exactly two
// keys exist: the bearer token and the serialized identity.
type CredentialRecord struct {
	bun.BaseModel `bun:"table:console_credentials,alias:cred"`
	Key           string     `bun:"key,pk" json:"key"`
	Value         string     `bun:"value,notnull" json:"value"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
