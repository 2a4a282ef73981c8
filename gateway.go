package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const (
	loginPath       = "/auth/login"
	registerPath    = "/auth/register"
	mePath          = "/auth/me"
	usersPath       = "/auth/users"
	userPathFmt     = "/auth/users/%s"
	userAdminFmt    = "/auth/users/%s/admin"
	requestIDHeader = "X-Request-ID"
)

// Gateway fallbacks when the response body carries no detail.
var (
	errCreateUserFailed = goerrors.New("Failed to add employee", goerrors.CategoryAuth).
				WithTextCode(TextCodeRequestFailed).
				WithCode(goerrors.CodeUnauthorized)
	errUpdateUserFailed = goerrors.New("Failed to update employee", goerrors.CategoryAuth).
				WithTextCode(TextCodeRequestFailed).
				WithCode(goerrors.CodeUnauthorized)
	errDeleteUserFailed = goerrors.New("Failed to delete employee", goerrors.CategoryAuth).
				WithTextCode(TextCodeRequestFailed).
				WithCode(goerrors.CodeUnauthorized)
	errToggleAdminFailed = goerrors.New("Failed to update admin status", goerrors.CategoryAuth).
				WithTextCode(TextCodeRequestFailed).
				WithCode(goerrors.CodeUnauthorized)
	errListUsersFailed = goerrors.New("Failed to load employees", goerrors.CategoryAuth).
				WithTextCode(TextCodeRequestFailed).
				WithCode(goerrors.CodeUnauthorized)
)

// remoteUser is the identity service's user object. The id arrives as a
// JSON number; the console works with opaque strings.
type remoteUser struct {
	ID        json.Number `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	IsAdmin   bool        `json:"is_admin"`
	CreatedAt string      `json:"created_at"`
}

type authEnvelope struct {
	AccessToken string     `json:"access_token"`
	User        remoteUser `json:"user"`
}

type detailEnvelope struct {
	Detail string `json:"detail"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// HTTPGateway talks JSON over HTTP to the remote identity service.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  Logger
	now     func() time.Time
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway returns a gateway for the configured base URL.
func NewHTTPGateway(cfg Config) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.GetBaseURL(),
		client:  &http.Client{Timeout: cfg.GetHTTPTimeout()},
		logger:  defLogger{},
		now:     time.Now,
	}
}

func (g *HTTPGateway) WithLogger(logger Logger) *HTTPGateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithHTTPClient overrides the transport (useful for tests).
func (g *HTTPGateway) WithHTTPClient(client *http.Client) *HTTPGateway {
	if client != nil {
		g.client = client
	}
	return g
}

func (g *HTTPGateway) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}

	envelope := &authEnvelope{}
	if err := g.do(ctx, http.MethodPost, loginPath, "", payload, envelope, ErrLoginFailed); err != nil {
		return nil, err
	}

	return g.authResult(envelope, ErrLoginFailed)
}

func (g *HTTPGateway) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}

	envelope := &authEnvelope{}
	if err := g.do(ctx, http.MethodPost, registerPath, "", payload, envelope, ErrRegistrationFailed); err != nil {
		return nil, err
	}

	return g.authResult(envelope, ErrRegistrationFailed)
}

func (g *HTTPGateway) WhoAmI(ctx context.Context, token string) (*Identity, error) {
	user := &remoteUser{}
	if err := g.do(ctx, http.MethodGet, mePath, token, nil, user, ErrTokenRejected); err != nil {
		return nil, err
	}

	identity := g.identityFromRemote(*user)
	return &identity, nil
}

func (g *HTTPGateway) ListUsers(ctx context.Context, token string) ([]DirectoryEntry, error) {
	var users []remoteUser
	if err := g.do(ctx, http.MethodGet, usersPath, token, nil, &users, errListUsersFailed); err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, g.entryFromRemote(user))
	}
	return entries, nil
}

func (g *HTTPGateway) CreateUser(ctx context.Context, token string, req CreateUserRequest) error {
	return g.do(ctx, http.MethodPost, usersPath, token, req, nil, errCreateUserFailed)
}

func (g *HTTPGateway) UpdateUser(ctx context.Context, token, id string, req UpdateUserRequest) error {
	return g.do(ctx, http.MethodPut, fmt.Sprintf(userPathFmt, id), token, req, nil, errUpdateUserFailed)
}

func (g *HTTPGateway) DeleteUser(ctx context.Context, token, id string) error {
	return g.do(ctx, http.MethodDelete, fmt.Sprintf(userPathFmt, id), token, nil, nil, errDeleteUserFailed)
}

func (g *HTTPGateway) ToggleAdmin(ctx context.Context, token, id string) (string, error) {
	envelope := &messageEnvelope{}
	if err := g.do(ctx, http.MethodPut, fmt.Sprintf(userAdminFmt, id), token, nil, envelope, errToggleAdminFailed); err != nil {
		return "", err
	}
	return envelope.Message, nil
}

func (g *HTTPGateway) authResult(envelope *authEnvelope, fallback *goerrors.Error) (*AuthResult, error) {
	if envelope.AccessToken == "" {
		return nil, goerrors.New("no access token received", fallback.Category).
			WithTextCode(fallback.TextCode).
			WithCode(goerrors.CodeUnauthorized)
	}

	return &AuthResult{
		Token:    envelope.AccessToken,
		Identity: g.identityFromRemote(envelope.User),
	}, nil
}

func (g *HTTPGateway) identityFromRemote(user remoteUser) Identity {
	return Identity{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     RoleFromAdminFlag(user.IsAdmin),
	}
}

func (g *HTTPGateway) entryFromRemote(user remoteUser) DirectoryEntry {
	id := user.ID.String()
	if id == "" {
		// Records without an id still need a stable handle for table rows.
		if generated, err := hashid.NewUUID(user.Email); err == nil {
			id = generated.String()
		}
	}

	createdAt := g.now()
	if user.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, user.CreatedAt); err == nil {
			createdAt = parsed
		}
	}

	return DirectoryEntry{
		ID:        id,
		Name:      user.Username,
		Email:     user.Email,
		Role:      RoleFromAdminFlag(user.IsAdmin),
		IsAdmin:   user.IsAdmin,
		CreatedAt: createdAt,
	}
}

// do issues one request. Non-success statuses become categorized errors
// carrying the server's detail when one decodes, the fallback otherwise;
// transport faults surface as network errors, never raw.
func (g *HTTPGateway) do(ctx context.Context, method, path, token string, payload, out any, fallback *goerrors.Error) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode request body")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("identity service unreachable: %v", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to reach the identity service").
			WithTextCode(TextCodeNetworkFailure).
			WithCode(goerrors.CodeInternal)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to read response").
			WithTextCode(TextCodeNetworkFailure).
			WithCode(goerrors.CodeInternal)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return g.statusError(method, path, resp.StatusCode, raw, fallback)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to decode response body")
		}
	}

	return nil
}

func (g *HTTPGateway) statusError(method, path string, status int, raw []byte, fallback *goerrors.Error) error {
	detail := detailEnvelope{}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		return goerrors.New(detail.Detail, fallback.Category).
			WithTextCode(fallback.TextCode).
			WithCode(status).
			WithMetadata(map[string]any{
				"status": status,
				"path":   path,
			})
	}

	g.logger.Debug("no decodable detail in %s %s response (status %d)", method, path, status)

	return goerrors.New(fallback.Message, fallback.Category).
		WithTextCode(fallback.TextCode).
		WithCode(status).
		WithMetadata(map[string]any{
			"status": status,
			"path":   path,
		})
}
