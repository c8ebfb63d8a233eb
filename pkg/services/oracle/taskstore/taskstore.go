// Package taskstore implements the optional durable task store: a
// crash-recovery side-cache of finished_cache and a best-effort
// snapshot of pending_queue, so a restarted node does not re-sign or
// re-finalize a request it already answered. Nothing here is
// authoritative; the chain and the in-memory maps the Service holds are.
package taskstore

import (
	"fmt"
	"time"
)

// PendingSnapshot is the durable side-record for one in-flight request.
// It carries enough to recognize on restart which local signatures were
// already produced, but not the transactions themselves: the chain
// collaborator can always rebuild identical transactions deterministically,
// so shipping raw transaction bytes to disk would just be redundant.
type PendingSnapshot struct {
	RequestID   uint64            `json:"request_id"`
	CreatedAt   time.Time         `json:"created_at"`
	TxBuilt     bool              `json:"tx_built"`
	Signs       map[string]string `json:"signs,omitempty"`        // pubkey hex -> base64 sig
	BackupSigns map[string]string `json:"backup_signs,omitempty"` // pubkey hex -> base64 sig
}

// Store is the durable task store's collaborator contract. All methods
// must be safe for concurrent use.
type Store interface {
	// SaveFinished durably records that requestID finished at t.
	SaveFinished(requestID uint64, t time.Time) error
	// LoadFinished returns every durably recorded finished entry.
	LoadFinished() (map[uint64]time.Time, error)
	// DeleteFinished drops a finished entry, e.g. once its TTL expires.
	DeleteFinished(requestID uint64) error

	// SavePending durably records or overwrites a pending task snapshot.
	SavePending(snap PendingSnapshot) error
	// LoadPending returns every durably recorded pending snapshot.
	LoadPending() (map[uint64]PendingSnapshot, error)
	// DeletePending drops a pending snapshot, e.g. once it finalizes.
	DeletePending(requestID uint64) error

	// Close releases the store's resources.
	Close() error
}

// Config selects and configures a durable task store backend. The zero
// value selects the in-memory backend, which is not actually durable and
// exists so the service can treat "no backend configured" and "an
// explicit no-op backend" identically.
type Config struct {
	// Type is one of "", "memory", "boltdb" or "leveldb".
	Type    string        `yaml:"Type"`
	BoltDB  BoltDBOptions `yaml:"BoltDBOptions"`
	LevelDB LevelDBOptions `yaml:"LevelDBOptions"`
}

// New builds the Store selected by cfg.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "boltdb":
		return NewBoltDBStore(cfg.BoltDB)
	case "leveldb":
		return NewLevelDBStore(cfg.LevelDB)
	default:
		return nil, fmt.Errorf("taskstore: unknown backend type %q", cfg.Type)
	}
}
