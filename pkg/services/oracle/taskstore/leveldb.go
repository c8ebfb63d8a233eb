package taskstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBOptions configures the goleveldb-backed Store.
type LevelDBOptions struct {
	DataDirectoryPath string `yaml:"DataDirectoryPath"`
}

var (
	finishedPrefix = []byte{0x01}
	pendingPrefix  = []byte{0x02}
)

// LevelDBStore is a Store backed by a local goleveldb database, used the
// same way the chain node itself picks goleveldb over bbolt: better
// write throughput for a busier task store.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (creating if necessary) a goleveldb database at
// cfg.DataDirectoryPath.
func NewLevelDBStore(cfg LevelDBOptions) (*LevelDBStore, error) {
	if cfg.DataDirectoryPath == "" {
		return nil, fmt.Errorf("taskstore: leveldb DataDirectoryPath is required")
	}
	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("taskstore: opening leveldb: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

func prefixedKey(prefix []byte, id uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], id)
	return key
}

func (s *LevelDBStore) SaveFinished(requestID uint64, t time.Time) error {
	stamp, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return s.db.Put(prefixedKey(finishedPrefix, requestID), stamp, nil)
}

func (s *LevelDBStore) LoadFinished() (map[uint64]time.Time, error) {
	out := make(map[uint64]time.Time)
	iter := s.db.NewIterator(util.BytesPrefix(finishedPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		var t time.Time
		if err := t.UnmarshalBinary(iter.Value()); err != nil {
			return nil, err
		}
		out[binary.BigEndian.Uint64(bytes.TrimPrefix(iter.Key(), finishedPrefix))] = t
	}
	return out, iter.Error()
}

func (s *LevelDBStore) DeleteFinished(requestID uint64) error {
	return s.db.Delete(prefixedKey(finishedPrefix, requestID), nil)
}

func (s *LevelDBStore) SavePending(snap PendingSnapshot) error {
	blob, err := encode(snap)
	if err != nil {
		return err
	}
	return s.db.Put(prefixedKey(pendingPrefix, snap.RequestID), blob, nil)
}

func (s *LevelDBStore) LoadPending() (map[uint64]PendingSnapshot, error) {
	out := make(map[uint64]PendingSnapshot)
	iter := s.db.NewIterator(util.BytesPrefix(pendingPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		var snap PendingSnapshot
		if err := decode(iter.Value(), &snap); err != nil {
			return nil, err
		}
		out[binary.BigEndian.Uint64(bytes.TrimPrefix(iter.Key(), pendingPrefix))] = snap
	}
	return out, iter.Error()
}

func (s *LevelDBStore) DeletePending(requestID uint64) error {
	return s.db.Delete(prefixedKey(pendingPrefix, requestID), nil)
}

func (s *LevelDBStore) Close() error { return s.db.Close() }
