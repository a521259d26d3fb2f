package badger

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"go.hackfix.me/rastore/store"
)

// Badger is a store.Engine backed by BadgerDB.
type Badger struct {
	store.Listeners
	db *badger.DB
}

var _ store.Engine = &Badger{}

// Open opens the Badger database at path. If path is empty the database is
// kept in memory. If encKey is not empty it must be 16, 24 or 32 bytes long,
// to select AES-128, AES-192 or AES-256 encryption respectively.
func Open(path string, encKey []byte) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	if path == "" {
		opts = opts.WithInMemory(true)
	}

	if len(encKey) > 0 {
		// The index cache is mandatory when encryption is enabled.
		opts = opts.WithEncryptionKey(encKey).WithIndexCacheSize(10 << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Badger{db: db}, nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func (s *Badger) GetString(key string) (string, bool, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}

	return string(val), true, nil
}

func (s *Badger) Set(key, value string) error {
	err := s.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return err
	}

	s.Notify(key)
	return nil
}

func (s *Badger) Delete(key string) error {
	err := s.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return err
	}

	s.Notify(key)
	return nil
}

func (s *Badger) AllKeys() ([]string, error) {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	// Enable key-only iteration, which is more efficient.
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	keys := []string{}
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, string(it.Item().KeyCopy(nil)))
	}

	return keys, nil
}

func (s *Badger) update(fn func(txn *badger.Txn) error) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}

	return txn.Commit()
}
