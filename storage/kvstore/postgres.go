// Package kvstore persists the opaque key/value pairs the client layer keeps
// between calls (session tokens, cached parent snapshots). Values are sealed
// at rest; the database only ever sees ciphertext.
package kvstore

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

type Store struct {
	db  *sqlx.DB
	key *[32]byte
}

var _ core.KV = (*Store)(nil) // interface compliance check

func NewStore(db *sql.DB, conf *core.Config) *Store {
	return &Store{
		db:  sqlx.NewDb(db, conf.Database.Engine),
		key: boxKey(conf.SecretKey),
	}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	var sealed []byte
	err := s.db.GetContext(ctx, &sealed, "SELECT value FROM kv_store WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return "", core.ErrKeyNotFound
	}
	if err != nil {
		return "", storeErr(err, "getting item")
	}
	value, err := unseal(s.key, sealed)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	sealed, err := seal(s.key, []byte(value))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()`,
		key, sealed,
	)
	return storeErr(err, "setting item")
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1", key)
	return storeErr(err, "removing item")
}

// storeErr wraps a database error. A dead connection is unrecoverable for
// every later request too, so it comes back as a shutdown error.
func storeErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == driver.ErrBadConn {
		return core.NewShutdownError(err)
	}
	return errors.Wrap(err, op)
}
