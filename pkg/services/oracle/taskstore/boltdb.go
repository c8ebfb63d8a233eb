package taskstore

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltDBOptions configures the bbolt-backed Store.
type BoltDBOptions struct {
	FilePath string `yaml:"FilePath"`
}

var (
	finishedBucket = []byte("finished")
	pendingBucket  = []byte("pending")
)

// BoltDBStore is a Store backed by a local bbolt file, for single-node
// deployments that want crash recovery without running a separate
// database process.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (creating if necessary) a bbolt file at
// cfg.FilePath with both buckets present.
func NewBoltDBStore(cfg BoltDBOptions) (*BoltDBStore, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("taskstore: boltdb FilePath is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0700); err != nil {
		return nil, fmt.Errorf("taskstore: creating boltdb dir: %w", err)
	}
	db, err := bbolt.Open(cfg.FilePath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("taskstore: opening boltdb: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(finishedBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(pendingBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("taskstore: creating buckets: %w", err)
	}
	return &BoltDBStore{db: db}, nil
}

func idKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

func (s *BoltDBStore) SaveFinished(requestID uint64, t time.Time) error {
	stamp, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(finishedBucket).Put(idKey(requestID), stamp)
	})
}

func (s *BoltDBStore) LoadFinished() (map[uint64]time.Time, error) {
	out := make(map[uint64]time.Time)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(finishedBucket).ForEach(func(k, v []byte) error {
			var t time.Time
			if err := t.UnmarshalBinary(v); err != nil {
				return err
			}
			out[binary.BigEndian.Uint64(k)] = t
			return nil
		})
	})
	return out, err
}

func (s *BoltDBStore) DeleteFinished(requestID uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(finishedBucket).Delete(idKey(requestID))
	})
}

func (s *BoltDBStore) SavePending(snap PendingSnapshot) error {
	blob, err := encode(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingBucket).Put(idKey(snap.RequestID), blob)
	})
}

func (s *BoltDBStore) LoadPending() (map[uint64]PendingSnapshot, error) {
	out := make(map[uint64]PendingSnapshot)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingBucket).ForEach(func(k, v []byte) error {
			var snap PendingSnapshot
			if err := decode(v, &snap); err != nil {
				return err
			}
			out[binary.BigEndian.Uint64(k)] = snap
			return nil
		})
	})
	return out, err
}

func (s *BoltDBStore) DeletePending(requestID uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(idKey(requestID))
	})
}

func (s *BoltDBStore) Close() error { return s.db.Close() }
