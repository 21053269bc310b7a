package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltBucketCollections = "collections" // key: collection name -> JSON

	// boltLockTimeout bounds the wait for another process's transaction.
	boltLockTimeout = 5 * time.Second
)

// BoltSink keeps every collection in one bbolt database. bbolt locks the
// file for as long as it is open, so the database is opened per
// transaction and other processes can use it in between.
type BoltSink struct {
	path string
	mu   sync.Mutex
}

// NewBoltSink creates the database at path if needed.
func NewBoltSink(path string) (*BoltSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	b := &BoltSink{path: path}
	if err := b.update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketCollections))
		return err
	}); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BoltSink) open(readOnly bool) (*bbolt.DB, error) {
	db, err := bbolt.Open(b.path, 0600, &bbolt.Options{Timeout: boltLockTimeout, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	return db, nil
}

func (b *BoltSink) update(fn func(tx *bbolt.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.open(false)
	if err != nil {
		return err
	}
	if err := db.Update(fn); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

// Load implements Sink.
func (b *BoltSink) Load(name string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.open(true)
	if err != nil {
		return nil, false, err
	}
	defer db.Close()

	var data []byte
	err = db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketCollections))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(name)); v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

// Save implements Sink.
func (b *BoltSink) Save(name string, data []byte) error {
	return b.update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(boltBucketCollections))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(name), data)
	})
}
