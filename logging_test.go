package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func TestNewDefaultLogger(t *testing.T) {
	logger := NewDefaultLogger("console.test")
	require.NotNil(t, logger)

	// Must not panic with structured args.
	logger.Info("session state", "state", StateAnonymous)
}

func TestComponentsAcceptInjectedLogger(t *testing.T) {
	spy := &captureLogger{}

	manager := NewSessionManager(newStubGateway(), NewMemoryCredentialStore()).WithLogger(spy)
	_, err := manager.Login(context.Background(), "ada@example.com", "secret123")
	require.Error(t, err)

	require.NotEmpty(t, spy.calls)
	assert.Equal(t, "error", spy.calls[0].level)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	manager := NewSessionManager(newStubGateway(), NewMemoryCredentialStore())
	assert.NotPanics(t, func() {
		manager.WithLogger(nil)
		_, _ = manager.Bootstrap(context.Background())
	})
}

// stubGateway fails every operation; enough for logger plumbing tests.
type stubGateway struct{}

func newStubGateway() Gateway { return stubGateway{} }

func (stubGateway) Login(context.Context, string, string) (*AuthResult, error) {
	return nil, ErrLoginFailed
}

func (stubGateway) Register(context.Context, string, string, string) (*AuthResult, error) {
	return nil, ErrRegistrationFailed
}

func (stubGateway) WhoAmI(context.Context, string) (*Identity, error) {
	return nil, ErrTokenRejected
}

func (stubGateway) ListUsers(context.Context, string) ([]DirectoryEntry, error) {
	return nil, errListUsersFailed
}

func (stubGateway) CreateUser(context.Context, string, CreateUserRequest) error {
	return errCreateUserFailed
}

func (stubGateway) UpdateUser(context.Context, string, string, UpdateUserRequest) error {
	return errUpdateUserFailed
}

func (stubGateway) DeleteUser(context.Context, string, string) error {
	return errDeleteUserFailed
}

func (stubGateway) ToggleAdmin(context.Context, string, string) (string, error) {
	return "", errToggleAdminFailed
}
