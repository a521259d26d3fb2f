package bolt

import (
	"github.com/boltdb/bolt"

	"go.hackfix.me/rastore/store"
)

var bucket = []byte("rastore")

// Bolt is a store.Engine backed by a BoltDB file. All keys live in a single
// bucket.
type Bolt struct {
	store.Listeners
	db *bolt.DB
}

var _ store.Engine = &Bolt{}

// Open opens or creates the BoltDB file at path.
func Open(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

// Path returns the path of the database file.
func (b *Bolt) Path() string {
	return b.db.Path()
}

func (b *Bolt) GetString(key string) (v string, ok bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		// The returned slice is only valid during the transaction.
		if val := tx.Bucket(bucket).Get([]byte(key)); val != nil {
			v, ok = string(val), true
		}
		return nil
	})
	return v, ok, err
}

func (b *Bolt) Set(key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return err
	}

	b.Notify(key)
	return nil
}

func (b *Bolt) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
	if err != nil {
		return err
	}

	b.Notify(key)
	return nil
}

func (b *Bolt) AllKeys() ([]string, error) {
	keys := []string{}
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
