package console

// Action is a console capability gated by role policy.
type Action string

const (
	// ActionRetrainModel retrains the anomaly-detection model
	ActionRetrainModel Action = "retrain-model"
	// ActionAdjustSensitivity tunes detection sensitivity
	ActionAdjustSensitivity Action = "adjust-sensitivity"
	// ActionManageEmployees covers directory create and update
	ActionManageEmployees Action = "manage-employees"
	// ActionToggleAdmin promotes or demotes an admin
	ActionToggleAdmin Action = "toggle-admin"
	// ActionDeleteUser removes a directory entry
	ActionDeleteUser Action = "delete-user"
	// ActionViewDashboard and the other view actions are read-only
	ActionViewDashboard Action = "view-dashboard"
	// ActionViewIncidents reads incident listings
	ActionViewIncidents Action = "view-incidents"
	// ActionViewReports reads report pages
	ActionViewReports Action = "view-reports"
)

// adminOnly is the current policy: binary. Every role other than admin is
// denied these, including analyst.
var adminOnly = map[Action]struct{}{
	ActionRetrainModel:      {},
	ActionAdjustSensitivity: {},
	ActionManageEmployees:   {},
	ActionToggleAdmin:       {},
	ActionDeleteUser:        {},
}

// Can reports whether role is permitted to perform action. Read-only views
// are open to every valid role; unknown roles get nothing.
func Can(role UserRole, action Action) bool {
	if !IsValidRole(role) {
		return false
	}
	if _, restricted := adminOnly[action]; restricted {
		return role == RoleAdmin
	}
	return true
}

// Authorize is the policy check used to gate interactive actions. Denials
// carry role and action metadata so the UI can show a distinguishable
// reason instead of a silent no-op.
func Authorize(role UserRole, action Action) error {
	if Can(role, action) {
		return nil
	}
	denial := ErrActionForbidden.Clone()
	if denial == nil {
		return ErrActionForbidden
	}
	return denial.WithMetadata(map[string]any{
		"role":   string(role),
		"action": string(action),
	})
}
