// Package badgerkv persists console session material in BadgerDB so the
// operator's session survives a console restart.
package badgerkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"autogest/internal/domain/session"
)

// keyPrefix namespaces console keys inside the database.
const keyPrefix = "console:"

// Storage implements session.Storage on top of a BadgerDB handle.
type Storage struct {
	db    *badger.DB
	owned bool
}

// Compile-time check that Storage implements session.Storage.
var _ session.Storage = (*Storage)(nil)

// New wraps an existing database handle. The caller keeps ownership.
func New(db *badger.DB) *Storage {
	return &Storage{db: db}
}

// Open opens (or creates) a database at path. An empty path opens an
// in-memory database.
func Open(path string) (*Storage, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &Storage{db: db, owned: true}, nil
}

// Close closes the database if this Storage opened it.
func (s *Storage) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Get implements session.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return session.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put implements session.Storage.
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyPrefix+key), value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Delete implements session.Storage.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keyPrefix + key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}
