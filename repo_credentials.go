package console

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenCredentialsDB opens the sqlite database backing the durable
// credential store. The DSN comes from Config.GetStoreDSN.
func OpenCredentialsDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to open credential store")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// BunCredentialStore is the durable CredentialStore. Token and identity are
// two rows of one table and every write or clear runs in a single
// transaction, so a reader never observes a half-written session.
type BunCredentialStore struct {
	db     *bun.DB
	logger Logger
	now    func() time.Time
}

var _ CredentialStore = (*BunCredentialStore)(nil)

// NewBunCredentialStore returns a store over the given bun handle.
func NewBunCredentialStore(db *bun.DB) *BunCredentialStore {
	return &BunCredentialStore{
		db:     db,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (s *BunCredentialStore) WithLogger(logger Logger) *BunCredentialStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Init creates the credentials table. Safe to call on every start.
func (s *BunCredentialStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to initialize credential store")
	}
	return nil
}

func (s *BunCredentialStore) Put(ctx context.Context, token string, identity *Identity) error {
	if identity == nil {
		return goerrors.New("identity is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	serialized, err := encodeIdentity(identity)
	if err != nil {
		return err
	}

	now := s.now()
	records := []*CredentialRecord{
		{Key: CredentialTokenKey, Value: token, UpdatedAt: &now},
		{Key: CredentialIdentityKey, Value: serialized, UpdatedAt: &now},
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range records {
			if _, err := tx.NewInsert().
				Model(record).
				On("CONFLICT (key) DO UPDATE").
				Set("value = EXCLUDED.value").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist session credentials")
	}

	return nil
}

func (s *BunCredentialStore) Get(ctx context.Context) (string, *Identity, error) {
	var records []CredentialRecord
	if err := s.db.NewSelect().
		Model(&records).
		Where("key IN (?, ?)", CredentialTokenKey, CredentialIdentityKey).
		Scan(ctx); err != nil {
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read session credentials")
	}

	var token, serialized string
	for _, record := range records {
		switch record.Key {
		case CredentialTokenKey:
			token = record.Value
		case CredentialIdentityKey:
			serialized = record.Value
		}
	}

	if token == "" || serialized == "" {
		return "", nil, ErrNoCredentials
	}

	identity, err := decodeIdentity(serialized)
	if err != nil {
		// A corrupt mirror is unrecoverable; treat it as absent so the
		// session manager falls back to anonymous.
		s.logger.Warn("discarding corrupt credential mirror: %v", err)
		return "", nil, ErrNoCredentials
	}

	return token, identity, nil
}

func (s *BunCredentialStore) Clear(ctx context.Context) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*CredentialRecord)(nil)).
			Where("key IN (?, ?)", CredentialTokenKey, CredentialIdentityKey).
			Exec(ctx)
		return err
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to clear session credentials")
	}
	return nil
}
