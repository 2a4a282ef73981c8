package console_test

import (
	"sync"
	"testing"

	console "github.com/chronosguard/go-console"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name     string
		role     console.UserRole
		action   console.Action
		expected bool
	}{
		{"admin can retrain model", console.RoleAdmin, console.ActionRetrainModel, true},
		{"admin can adjust sensitivity", console.RoleAdmin, console.ActionAdjustSensitivity, true},
		{"admin can manage employees", console.RoleAdmin, console.ActionManageEmployees, true},
		{"admin can toggle admin", console.RoleAdmin, console.ActionToggleAdmin, true},
		{"admin can delete users", console.RoleAdmin, console.ActionDeleteUser, true},
		{"admin can view dashboard", console.RoleAdmin, console.ActionViewDashboard, true},
		{"analyst cannot retrain model", console.RoleAnalyst, console.ActionRetrainModel, false},
		{"analyst cannot manage employees", console.RoleAnalyst, console.ActionManageEmployees, false},
		{"analyst can view incidents", console.RoleAnalyst, console.ActionViewIncidents, true},
		{"analyst can view reports", console.RoleAnalyst, console.ActionViewReports, true},
		{"viewer cannot toggle admin", console.RoleViewer, console.ActionToggleAdmin, false},
		{"viewer cannot delete users", console.RoleViewer, console.ActionDeleteUser, false},
		{"viewer can view dashboard", console.RoleViewer, console.ActionViewDashboard, true},
		{"unknown role denied everything", console.UserRole("root"), console.ActionViewDashboard, false},
		{"empty role denied everything", console.UserRole(""), console.ActionViewReports, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, console.Can(tt.role, tt.action))
		})
	}
}

func TestAuthorize(t *testing.T) {
	err := console.Authorize(console.RoleAdmin, console.ActionRetrainModel)
	assert.NoError(t, err)

	err = console.Authorize(console.RoleViewer, console.ActionManageEmployees)
	require.Error(t, err)
	assert.True(t, console.IsAuthorizationError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryAuthz, richErr.Category)
	assert.Equal(t, console.RoleViewer, richErr.Metadata["role"])
}

func TestAuthorizeDenialsAreIndependent(t *testing.T) {
	first := console.Authorize(console.RoleViewer, console.ActionDeleteUser)
	second := console.Authorize(console.RoleAnalyst, console.ActionRetrainModel)
	require.Error(t, first)
	require.Error(t, second)

	var firstErr, secondErr *goerrors.Error
	require.True(t, goerrors.As(first, &firstErr))
	require.True(t, goerrors.As(second, &secondErr))

	// Each denial carries its own metadata; a later denial must not rewrite
	// an error a previous caller still holds.
	assert.Equal(t, "delete-user", firstErr.Metadata["action"])
	assert.Equal(t, "viewer", firstErr.Metadata["role"])
	assert.Equal(t, "retrain-model", secondErr.Metadata["action"])

	// The shared sentinel itself stays untouched.
	var sentinel *goerrors.Error
	require.True(t, goerrors.As(console.ErrActionForbidden, &sentinel))
	assert.Empty(t, sentinel.Metadata)
}

func TestAuthorizeConcurrentDenials(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := console.Authorize(console.RoleViewer, console.ActionToggleAdmin)
				require.Error(t, err)
				_ = err.Error()
			}
		}()
	}
	wg.Wait()
}

func TestRoleFromAdminFlag(t *testing.T) {
	assert.Equal(t, console.RoleAdmin, console.RoleFromAdminFlag(true))
	assert.Equal(t, console.RoleViewer, console.RoleFromAdminFlag(false))

	// The analyst role exists in the policy but no admin-flag value
	// produces it.
	for _, flag := range []bool{true, false} {
		assert.NotEqual(t, console.RoleAnalyst, console.RoleFromAdminFlag(flag))
	}
}

func TestParseRole(t *testing.T) {
	role, ok := console.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, console.RoleAdmin, role)

	_, ok = console.ParseRole("superuser")
	assert.False(t, ok)
}
