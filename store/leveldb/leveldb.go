package leveldb

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"go.hackfix.me/rastore/store"
)

// LevelDB is a store.Engine backed by goleveldb.
type LevelDB struct {
	store.Listeners
	db *leveldb.DB
}

var _ store.Engine = &LevelDB{}

var syncWrites = &opt.WriteOptions{Sync: true}

// Open opens or creates the LevelDB database in the directory at path.
func Open(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// OpenMem opens a LevelDB database kept in memory.
func OpenMem() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) GetString(key string) (string, bool, error) {
	val, err := l.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(val), true, nil
}

func (l *LevelDB) Set(key, value string) error {
	if err := l.db.Put([]byte(key), []byte(value), syncWrites); err != nil {
		return err
	}

	l.Notify(key)
	return nil
}

func (l *LevelDB) Delete(key string) error {
	if err := l.db.Delete([]byte(key), syncWrites); err != nil {
		return err
	}

	l.Notify(key)
	return nil
}

func (l *LevelDB) AllKeys() ([]string, error) {
	iter := l.db.NewIterator(nil, nil)
	keys := []string{}
	for iter.Next() {
		// The iterator reuses the key buffer; the conversion copies it.
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return keys, nil
}
