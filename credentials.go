package console

import (
	"context"
	"encoding/json"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// CredentialTokenKey is the well-known key holding the bearer token.
	CredentialTokenKey = "access_token"
	// CredentialIdentityKey holds the serialized cached identity.
	CredentialIdentityKey = "console_user"
)

// MemoryCredentialStore keeps the session mirror in process memory. It backs
// tests and ephemeral deployments where durability is not wanted.
type MemoryCredentialStore struct {
	mu       sync.RWMutex
	token    string
	identity *Identity
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Put(ctx context.Context, token string, identity *Identity) error {
	if identity == nil {
		return goerrors.New("identity is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	clone := *identity

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = &clone
	return nil
}

func (s *MemoryCredentialStore) Get(ctx context.Context) (string, *Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || s.identity == nil {
		return "", nil, ErrNoCredentials
	}

	clone := *s.identity
	return s.token, &clone, nil
}

func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	return nil
}

func encodeIdentity(identity *Identity) (string, error) {
	raw, err := json.Marshal(identity)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to serialize identity")
	}
	return string(raw), nil
}

func decodeIdentity(raw string) (*Identity, error) {
	identity := &Identity{}
	if err := json.Unmarshal([]byte(raw), identity); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to deserialize cached identity")
	}
	return identity, nil
}
