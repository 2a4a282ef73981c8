package console_test

import (
	"context"
	"sync"
	"testing"

	console "github.com/chronosguard/go-console"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func errTextCode(t *testing.T, err error) string {
	t.Helper()
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	return richErr.TextCode
}

// fakeGateway is an in-memory Gateway double with per-operation hooks and
// call counters.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	loginFn       func(ctx context.Context, email, password string) (*console.AuthResult, error)
	registerFn    func(ctx context.Context, username, email, password string) (*console.AuthResult, error)
	whoAmIFn      func(ctx context.Context, token string) (*console.Identity, error)
	listUsersFn   func(ctx context.Context, token string) ([]console.DirectoryEntry, error)
	createUserFn  func(ctx context.Context, token string, req console.CreateUserRequest) error
	updateUserFn  func(ctx context.Context, token, id string, req console.UpdateUserRequest) error
	deleteUserFn  func(ctx context.Context, token, id string) error
	toggleAdminFn func(ctx context.Context, token, id string) (string, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: map[string]int{}}
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeGateway) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*console.AuthResult, error) {
	f.record("login")
	if f.loginFn == nil {
		return nil, console.ErrLoginFailed
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeGateway) Register(ctx context.Context, username, email, password string) (*console.AuthResult, error) {
	f.record("register")
	if f.registerFn == nil {
		return nil, console.ErrRegistrationFailed
	}
	return f.registerFn(ctx, username, email, password)
}

func (f *fakeGateway) WhoAmI(ctx context.Context, token string) (*console.Identity, error) {
	f.record("whoami")
	if f.whoAmIFn == nil {
		return nil, console.ErrTokenRejected
	}
	return f.whoAmIFn(ctx, token)
}

func (f *fakeGateway) ListUsers(ctx context.Context, token string) ([]console.DirectoryEntry, error) {
	f.record("list")
	if f.listUsersFn == nil {
		return nil, nil
	}
	return f.listUsersFn(ctx, token)
}

func (f *fakeGateway) CreateUser(ctx context.Context, token string, req console.CreateUserRequest) error {
	f.record("create")
	if f.createUserFn == nil {
		return nil
	}
	return f.createUserFn(ctx, token, req)
}

func (f *fakeGateway) UpdateUser(ctx context.Context, token, id string, req console.UpdateUserRequest) error {
	f.record("update")
	if f.updateUserFn == nil {
		return nil
	}
	return f.updateUserFn(ctx, token, id, req)
}

func (f *fakeGateway) DeleteUser(ctx context.Context, token, id string) error {
	f.record("delete")
	if f.deleteUserFn == nil {
		return nil
	}
	return f.deleteUserFn(ctx, token, id)
}

func (f *fakeGateway) ToggleAdmin(ctx context.Context, token, id string) (string, error) {
	f.record("toggle")
	if f.toggleAdminFn == nil {
		return "", nil
	}
	return f.toggleAdminFn(ctx, token, id)
}

// recordingSink captures activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []console.ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event console.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []console.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]console.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}
