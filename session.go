package console

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// SessionState is a step of the session lifecycle.
type SessionState string

const (
	// StateUninitialized is the pre-bootstrap state of a fresh process.
	StateUninitialized SessionState = "uninitialized"
	// StateValidating is transient while the stored token is revalidated.
	// Consumers must not render protected content while in it.
	StateValidating SessionState = "validating"
	// StateAuthenticated means an in-memory identity is present.
	StateAuthenticated SessionState = "authenticated"
	// StateAnonymous is the stable signed-out state.
	StateAnonymous SessionState = "anonymous"
)

// SessionManager owns the authentication state machine. Construct one
// explicitly and inject it into every consumer; there is no package-level
// singleton.
type SessionManager struct {
	gateway Gateway
	store   CredentialStore
	logger  Logger
	sink    ActivitySink
	now     func() time.Time

	mu       sync.RWMutex
	state    SessionState
	token    string
	identity *Identity
}

// NewSessionManager wires the manager over its two collaborators.
func NewSessionManager(gateway Gateway, store CredentialStore) *SessionManager {
	return &SessionManager{
		gateway: gateway,
		store:   store,
		logger:  defLogger{},
		sink:    noopActivitySink{},
		now:     time.Now,
		state:   StateUninitialized,
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (m *SessionManager) WithActivitySink(sink ActivitySink) *SessionManager {
	m.sink = normalizeActivitySink(sink)
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *SessionManager) WithClock(clock func() time.Time) *SessionManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// State returns the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns a copy of the authenticated identity, if any.
func (m *SessionManager) Identity() (*Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return nil, false
	}
	clone := *m.identity
	return &clone, true
}

// Token returns the bearer token of the live session, empty when anonymous.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAuthenticated is true iff an in-memory identity is present. Token
// presence alone is not sufficient.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateAuthenticated && m.identity != nil
}

// Bootstrap restores a persisted session once per process start. With
// stored credentials it revalidates the token; on success the cached
// identity is trusted as-is, on any failure the store is cleared and the
// session lands anonymous. Subsequent calls are no-ops.
func (m *SessionManager) Bootstrap(ctx context.Context) (SessionState, error) {
	m.mu.Lock()
	if m.state != StateUninitialized {
		state := m.state
		m.mu.Unlock()
		return state, nil
	}
	m.state = StateValidating
	m.mu.Unlock()

	token, cached, err := m.store.Get(ctx)
	if err != nil {
		if !IsNoCredentials(err) {
			m.logger.Warn("credential store read failed: %v", err)
		}
		m.transition(StateAnonymous, "", nil)
		return StateAnonymous, nil
	}

	if _, err := m.gateway.WhoAmI(ctx, token); err != nil {
		m.logger.Info("stored token rejected, clearing session: %s", UserMessage(err))
		m.emit(ctx, ActivityEventSessionRejected, cached.ID, map[string]any{
			"error": UserMessage(err),
		})

		clearErr := m.store.Clear(ctx)
		m.transition(StateAnonymous, "", nil)
		if clearErr != nil {
			return StateAnonymous, clearErr
		}
		return StateAnonymous, nil
	}

	// The cached copy is trusted once the token is confirmed live; the
	// freshly fetched record is intentionally discarded.
	m.transition(StateAuthenticated, token, cached)
	m.emit(ctx, ActivityEventSessionRestored, cached.ID, nil)

	return StateAuthenticated, nil
}

// Login authenticates against the remote service and persists the session.
// On failure the state is left unchanged and the error carries the server's
// message when one was supplied.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*Identity, error) {
	if err := validateLoginInput(email, password); err != nil {
		return nil, err
	}

	result, err := m.gateway.Login(ctx, email, password)
	if err != nil {
		m.logger.Error("login failed: %s", UserMessage(err))
		m.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
			"error": UserMessage(err),
		})
		return nil, err
	}

	return m.establish(ctx, result, ActivityEventLoginSuccess)
}

// Register creates an account and signs in with the returned session. The
// requested role is accepted but has no effect on the resulting role: the
// remote service only toggles an admin flag.
func (m *SessionManager) Register(ctx context.Context, username, email, password string, requested UserRole) (*Identity, error) {
	if err := validateRegisterInput(username, email, password); err != nil {
		return nil, err
	}

	result, err := m.gateway.Register(ctx, username, email, password)
	if err != nil {
		m.logger.Error("registration failed: %s", UserMessage(err))
		m.emit(ctx, ActivityEventRegistrationFailed, "", map[string]any{
			"email": email,
			"error": UserMessage(err),
		})
		return nil, err
	}

	if requested != "" && requested != result.Identity.Role {
		m.logger.Debug("requested role %q ignored, server assigned %q", requested, result.Identity.Role)
	}

	return m.establish(ctx, result, ActivityEventRegistration)
}

// Logout clears the credential store and lands anonymous unconditionally.
// No network call is issued; the remote token simply ages out server-side.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.RLock()
	userID := ""
	if m.identity != nil {
		userID = m.identity.ID
	}
	m.mu.RUnlock()

	err := m.store.Clear(ctx)
	m.transition(StateAnonymous, "", nil)
	m.emit(ctx, ActivityEventLogout, userID, nil)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session cleared but store removal failed")
	}
	return nil
}

// establish persists and activates a session won from login or register.
// Memory and mirror move together: if the store write fails, the session is
// not activated.
func (m *SessionManager) establish(ctx context.Context, result *AuthResult, event ActivityEventType) (*Identity, error) {
	identity := result.Identity

	if err := m.store.Put(ctx, result.Token, &identity); err != nil {
		m.logger.Error("unable to persist session: %v", err)
		return nil, err
	}

	m.transition(StateAuthenticated, result.Token, &identity)
	m.emit(ctx, event, identity.ID, map[string]any{"role": identity.Role})

	if identity.IsAdmin() {
		m.logger.Info("administrator session established for %s", identity.Username)
	}

	clone := identity
	return &clone, nil
}

func (m *SessionManager) transition(state SessionState, token string, identity *Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.token = token
	m.identity = identity
}

func (m *SessionManager) emit(ctx context.Context, event ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(m.sink)
	err := sink.Record(ctx, ActivityEvent{
		EventType:  event,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: m.now(),
	})
	if err != nil {
		m.logger.Warn("session activity sink error: %v", err)
	}
}

func validateLoginInput(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login input").
			WithTextCode(TextCodeInvalidPayload).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func validateRegisterInput(username, email, password string) error {
	err := validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration input").
			WithTextCode(TextCodeInvalidPayload).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}
