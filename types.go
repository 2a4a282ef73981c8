package console

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Gateway is the sole network boundary: authenticated JSON-over-HTTP calls
// against the remote identity service, with failures surfaced as categorized
// errors rather than raw transport faults.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	WhoAmI(ctx context.Context, token string) (*Identity, error)
	ListUsers(ctx context.Context, token string) ([]DirectoryEntry, error)
	CreateUser(ctx context.Context, token string, req CreateUserRequest) error
	UpdateUser(ctx context.Context, token, id string, req UpdateUserRequest) error
	DeleteUser(ctx context.Context, token, id string) error
	ToggleAdmin(ctx context.Context, token, id string) (string, error)
}

// CredentialStore is scoped durable persistence for the session mirror.
// Put writes token and identity together; Get returns ErrNoCredentials when
// either half is absent; Clear is safe to call with no prior state.
type CredentialStore interface {
	Put(ctx context.Context, token string, identity *Identity) error
	Get(ctx context.Context) (string, *Identity, error)
	Clear(ctx context.Context) error
}

// AuthResult is what the remote service hands back on login or registration.
type AuthResult struct {
	Token    string
	Identity Identity
}

// CreateUserRequest is the admin create payload. The console always creates
// non-admin accounts; the flag exists because the wire contract carries it.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserRequest carries full-replace semantics: the password is always
// sent, there is no leave-unchanged option at the gateway contract level.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONSOLE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CONSOLE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONSOLE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONSOLE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
