package outbox

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	pendingBucket = []byte("pending")
	deadBucket    = []byte("dead")
)

// Store is a durable FIFO of undelivered notifications backed by BoltDB.
// Items that exhaust their retries move to a dead-letter bucket.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates the BoltDB file and its buckets if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, deadBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize(s.now())
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(pendingBucket), item)
	})
}

// Pending returns up to limit of the oldest items without removing them.
func (s *Store) Pending(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.key = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Ack removes a delivered item.
func (s *Store) Ack(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(keyOf(item))
	})
}

// Retry records a failed attempt. Once attempts reach maxAttempts the item
// is moved to the dead-letter bucket and Retry reports false.
func (s *Store) Retry(item Item, cause error, maxAttempts int) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	item.Attempts++
	if cause != nil {
		item.LastError = cause.Error()
	}
	requeued := maxAttempts <= 0 || item.Attempts < maxAttempts
	err := s.db.Update(func(tx *bolt.Tx) error {
		pending := tx.Bucket(pendingBucket)
		if err := pending.Delete(keyOf(item)); err != nil {
			return err
		}
		if requeued {
			return put(pending, item)
		}
		return put(tx.Bucket(deadBucket), item)
	})
	return requeued, err
}

// Size returns the number of pending items.
func (s *Store) Size() (int, error) {
	return s.count(pendingBucket)
}

// DeadLetters returns the number of items that were given up on.
func (s *Store) DeadLetters() (int, error) {
	return s.count(deadBucket)
}

// Purge drops pending and dead items enqueued before olderThan and returns
// how many were removed.
func (s *Store) Purge(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, deadBucket} {
			b := tx.Bucket(name)
			var stale [][]byte
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var item Item
				if err := json.Unmarshal(v, &item); err != nil {
					continue
				}
				if !item.EnqueuedAt.Before(olderThan) {
					// Keys are time ordered.
					break
				}
				stale = append(stale, append([]byte(nil), k...))
			}
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			removed += len(stale)
		}
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) count(bucket []byte) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return count, err
}

func put(b *bolt.Bucket, item Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return b.Put(keyOf(item), payload)
}

func keyOf(item Item) []byte {
	if len(item.key) > 0 {
		return item.key
	}
	return itemKey(item)
}
