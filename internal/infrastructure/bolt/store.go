// Package bolt wraps a BoltDB file as a set of JSON document buckets.
package bolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("bolt: key not found")

// Store persists JSON values under string keys, one bucket per collection.
type Store struct {
	db *bbolt.DB
}

// Open initializes the BoltDB file and ensures every bucket exists.
func Open(path string, buckets ...string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(bucket, key string, value any) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), payload)
	})
}

// Append stores value under the bucket's next sequence number so that
// iteration returns values in insertion order.
func (s *Store) Append(bucket string, value any) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put([]byte(fmt.Sprintf("%020d", seq)), payload)
	})
}

// Get decodes the value stored under key into dst.
func (s *Store) Get(bucket, key string, dst any) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, dst)
	})
}

// Update decodes the value under key into dst, lets fn modify it and writes
// it back, all in one transaction. An error from fn aborts the write.
func (s *Store) Update(bucket, key string, dst any, fn func() error) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		raw := b.Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
		if err := fn(); err != nil {
			return err
		}
		payload, err := json.Marshal(dst)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), payload)
	})
}

// ForEach calls fn with every raw value of the bucket in key order.
func (s *Store) ForEach(bucket string, fn func(key string, raw []byte) error) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
}

// Size returns the number of keys in bucket.
func (s *Store) Size(bucket string) (int, error) {
	if s == nil || s.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucket)).Stats().KeyN
		return nil
	})
	return count, err
}

// Ping checks the database is still readable.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(*bbolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
