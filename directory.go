package console

import (
	"context"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// UserDirectory is the administrative CRUD surface over the remote user
// list. Every successful mutation refetches the full directory rather than
// patching the local snapshot: once a write happened, the client never
// trusts its own prior state as authoritative.
type UserDirectory struct {
	gateway Gateway
	session *SessionManager
	logger  Logger
	sink    ActivitySink
	now     func() time.Time

	mu         sync.RWMutex
	entries    []DirectoryEntry
	submitting bool
}

// NewUserDirectory builds the directory over the injected session manager.
func NewUserDirectory(gateway Gateway, session *SessionManager) *UserDirectory {
	return &UserDirectory{
		gateway: gateway,
		session: session,
		logger:  defLogger{},
		sink:    noopActivitySink{},
		now:     time.Now,
	}
}

func (d *UserDirectory) WithLogger(logger Logger) *UserDirectory {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// WithActivitySink configures an ActivitySink for directory events.
func (d *UserDirectory) WithActivitySink(sink ActivitySink) *UserDirectory {
	d.sink = normalizeActivitySink(sink)
	return d
}

// Entries returns a copy of the latest fetched snapshot.
func (d *UserDirectory) Entries() []DirectoryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]DirectoryEntry, len(d.entries))
	copy(entries, d.entries)
	return entries
}

// Filter narrows the snapshot by name/email substring and optional role,
// the way the employee-management page searches.
func (d *UserDirectory) Filter(term string, role UserRole) []DirectoryEntry {
	term = strings.ToLower(strings.TrimSpace(term))

	matches := []DirectoryEntry{}
	for _, entry := range d.Entries() {
		if term != "" &&
			!strings.Contains(strings.ToLower(entry.Name), term) &&
			!strings.Contains(strings.ToLower(entry.Email), term) {
			continue
		}
		if role != "" && entry.Role != role {
			continue
		}
		matches = append(matches, entry)
	}
	return matches
}

// Refresh fetches the full directory and replaces the snapshot wholesale.
func (d *UserDirectory) Refresh(ctx context.Context) ([]DirectoryEntry, error) {
	actor, token, err := d.requireAdmin(ActionManageEmployees)
	if err != nil {
		return nil, err
	}

	entries, err := d.gateway.ListUsers(ctx, token)
	if err != nil {
		d.logger.Error("directory refresh failed: %s", UserMessage(err))
		return nil, err
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()

	d.emit(ctx, ActivityEventDirectoryRefreshed, actor.ID, map[string]any{
		"count": len(entries),
	})

	return d.Entries(), nil
}

// Create adds a non-admin account. All three fields are required; invalid
// input is rejected before any request is issued.
func (d *UserDirectory) Create(ctx context.Context, name, email, password string) error {
	if err := validateEmployeeInput(name, email, password); err != nil {
		return err
	}

	return d.mutate(ctx, "create", "", func(token string) error {
		return d.gateway.CreateUser(ctx, token, CreateUserRequest{
			Username: name,
			Email:    email,
			Password: password,
			IsAdmin:  false,
		})
	})
}

// Update replaces every field of the target account, password included;
// there is no leave-unchanged option at the gateway contract level.
func (d *UserDirectory) Update(ctx context.Context, id, name, email, password string) error {
	if err := requireTargetID(id); err != nil {
		return err
	}
	if err := validateEmployeeInput(name, email, password); err != nil {
		return err
	}

	return d.mutate(ctx, "update", "", func(token string) error {
		return d.gateway.UpdateUser(ctx, token, id, UpdateUserRequest{
			Username: name,
			Email:    email,
			Password: password,
		})
	})
}

// Delete removes the target account. Callers must confirm with the user
// out-of-band before invoking. The acting identity may not delete itself;
// that is rejected locally, before any request.
func (d *UserDirectory) Delete(ctx context.Context, id string) error {
	if err := requireTargetID(id); err != nil {
		return err
	}

	return d.mutate(ctx, "delete", id, func(token string) error {
		return d.gateway.DeleteUser(ctx, token, id)
	})
}

// ToggleAdmin flips the target's admin flag server-side and returns the
// service's acknowledgement message. Self-targets are rejected locally.
func (d *UserDirectory) ToggleAdmin(ctx context.Context, id string) (string, error) {
	if err := requireTargetID(id); err != nil {
		return "", err
	}

	message := ""
	err := d.mutate(ctx, "toggle-admin", id, func(token string) error {
		var err error
		message, err = d.gateway.ToggleAdmin(ctx, token, id)
		return err
	})
	return message, err
}

// mutate runs one idle -> submitting -> refetch-all -> idle cycle.
func (d *UserDirectory) mutate(ctx context.Context, kind, targetID string, op func(token string) error) error {
	actor, token, err := d.requireAdmin(actionForMutation(kind))
	if err != nil {
		return err
	}

	if targetID != "" && targetID == actor.ID {
		rejection := ErrSelfTarget.Clone()
		if rejection == nil {
			return ErrSelfTarget
		}
		return rejection.WithMetadata(map[string]any{
			"mutation": kind,
			"target":   targetID,
		})
	}

	if err := d.beginSubmit(); err != nil {
		return err
	}
	defer d.endSubmit()

	if err := op(token); err != nil {
		d.logger.Error("directory %s failed: %s", kind, UserMessage(err))
		return err
	}

	d.emit(ctx, ActivityEventDirectoryMutation, actor.ID, map[string]any{
		"mutation": kind,
		"target":   targetID,
	})

	// The mutation succeeded; the refetch is the consistency contract, so
	// its failure is still surfaced to the caller.
	entries, err := d.gateway.ListUsers(ctx, token)
	if err != nil {
		d.logger.Error("post-mutation refetch failed: %s", UserMessage(err))
		return err
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()

	return nil
}

func (d *UserDirectory) requireAdmin(action Action) (*Identity, string, error) {
	actor, ok := d.session.Identity()
	if !ok {
		return nil, "", ErrNotAuthenticated
	}

	if err := Authorize(actor.Role, action); err != nil {
		return nil, "", err
	}

	return actor, d.session.Token(), nil
}

func (d *UserDirectory) beginSubmit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return ErrMutationInFlight
	}
	d.submitting = true
	return nil
}

func (d *UserDirectory) endSubmit() {
	d.mu.Lock()
	d.submitting = false
	d.mu.Unlock()
}

func (d *UserDirectory) emit(ctx context.Context, event ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(d.sink)
	err := sink.Record(ctx, ActivityEvent{
		EventType:  event,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: d.now(),
	})
	if err != nil {
		d.logger.Warn("directory activity sink error: %v", err)
	}
}

func actionForMutation(kind string) Action {
	switch kind {
	case "delete":
		return ActionDeleteUser
	case "toggle-admin":
		return ActionToggleAdmin
	default:
		return ActionManageEmployees
	}
}

func validateEmployeeInput(name, email, password string) error {
	err := validation.Errors{
		"name":     validation.Validate(name, validation.Required),
		"email":    validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "please fill in all fields").
			WithTextCode(TextCodeInvalidPayload).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func requireTargetID(id string) error {
	if strings.TrimSpace(id) == "" {
		return goerrors.New("a target account id is required", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidPayload).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}
