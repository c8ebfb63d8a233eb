// Package oracle implements the designated-oracle node: it discovers
// pending on-chain oracle requests, fetches and filters their off-chain
// data, builds a deterministic response transaction, and collaborates
// with the other designated oracles to assemble a threshold multisig
// witness before submitting the finished transaction back to the chain.
package oracle

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/services/oracle/statusfeed"
	"github.com/oraclegrid/node/pkg/services/oracle/taskstore"
)

// Broadcaster fans a locally produced signature out to the configured
// peer set. Implementations must not block the caller for longer
// than their own send timeout; the pipeline and the janitor do not wait
// for them.
type Broadcaster interface {
	SendResponse(priv *keys.PrivateKey, reqID uint64, txSig []byte)
}

// Config holds everything the service needs beyond what it discovers
// from the chain at runtime.
type Config struct {
	Log         *zap.Logger
	Ledger      chain.Ledger
	Keys        []*keys.PrivateKey
	ChainParams ChainParams
	Broadcaster Broadcaster
	// TaskStore optionally persists finished_cache and a pending_queue
	// snapshot so a restart does not re-finalize or re-sign a request
	// already answered. Nil selects an in-memory, non-durable store,
	// which is fine for a single dev run but loses everything on
	// restart.
	TaskStore taskstore.Store
	// StatusFeed, if set, receives a lifecycle Event for every task
	// state transition this node drives. Nil disables the feed entirely;
	// nothing about the pipeline depends on it.
	StatusFeed *statusfeed.Hub

	MaxTaskTimeout      time.Duration
	FinishedCacheTTL    time.Duration
	RefreshInterval     time.Duration
	PollInterval        time.Duration
	AllowPrivateHost    bool
	AllowedContentTypes []string
	HTTPSTimeout        time.Duration
	// MaxConcurrentRequests bounds how many pending requests a single
	// poll tick will drive through the pipeline at once. The rest wait
	// for the next tick rather than queuing goroutines unboundedly.
	MaxConcurrentRequests int
}

// defaults for every pipeline timing knob left unset in Config.
const (
	defaultRefreshInterval       = 180 * time.Second
	defaultFinishedCacheTTL      = 3 * 24 * time.Hour
	defaultPollInterval          = 500 * time.Millisecond
	defaultHTTPSTimeout          = 5 * time.Second
	defaultMaxConcurrentRequests = 10
)

func (c *Config) setDefaults() {
	if c.RefreshInterval == 0 {
		c.RefreshInterval = defaultRefreshInterval
	}
	if c.FinishedCacheTTL == 0 {
		c.FinishedCacheTTL = defaultFinishedCacheTTL
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.HTTPSTimeout == 0 {
		c.HTTPSTimeout = defaultHTTPSTimeout
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = defaultMaxConcurrentRequests
	}
}

// Service is the running oracle node: the pending queue and finished
// cache, guarded by a single process-wide mutex, plus the poller and
// janitor goroutines that drive them.
type Service struct {
	cfg       Config
	log       *zap.Logger
	ledger    chain.Ledger
	protocols protocolRegistry

	// mu is the single logical mutex covering pending, finished and
	// every OracleTask field.
	mu       sync.Mutex
	pending  map[uint64]*OracleTask
	finished map[uint64]time.Time

	store taskstore.Store
	feed  *statusfeed.Hub

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService builds a Service from cfg. It does not start the poller or
// janitor; call Start for that.
func NewService(cfg Config) (*Service, error) {
	cfg.setDefaults()
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("oracle: Ledger is required")
	}
	if len(cfg.Keys) == 0 {
		return nil, fmt.Errorf("oracle: at least one oracle key is required")
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	if cfg.TaskStore == nil {
		store, err := taskstore.New(taskstore.Config{})
		if err != nil {
			return nil, err
		}
		cfg.TaskStore = store
	}

	https := newHTTPSFetcher(cfg.HTTPSTimeout, cfg.AllowPrivateHost, cfg.AllowedContentTypes)
	s := &Service{
		cfg:       cfg,
		log:       cfg.Log,
		ledger:    cfg.Ledger,
		protocols: newProtocolRegistry(https),
		pending:   make(map[uint64]*OracleTask),
		finished:  make(map[uint64]time.Time),
		store:     cfg.TaskStore,
		feed:      cfg.StatusFeed,
	}
	s.restore()
	return s, nil
}

// restore repopulates finished_cache and best-effort pending state from
// the durable task store. Restored pending signatures are speculative
// only: the next poll cycle rebuilds and installs the real transactions,
// at which point they are verified or pruned normally.
func (s *Service) restore() {
	finished, err := s.store.LoadFinished()
	if err != nil {
		s.log.Warn("oracle: loading durable finished cache failed", zap.Error(err))
	}
	for id, at := range finished {
		s.finished[id] = at
	}

	snaps, err := s.store.LoadPending()
	if err != nil {
		s.log.Warn("oracle: loading durable pending snapshot failed", zap.Error(err))
	}
	for id, snap := range snaps {
		if _, done := s.finished[id]; done {
			continue
		}
		req, err := s.ledger.RequestByID(context.Background(), id)
		if err != nil || req == nil {
			continue
		}
		task := newOracleTask(req, snap.CreatedAt)
		restoreSigs(task.Signs, snap.Signs)
		restoreSigs(task.BackupSigns, snap.BackupSigns)
		s.pending[id] = task
	}
}

func restoreSigs(dst map[string]*oracleSignature, src map[string]string) {
	for pubHex, sigB64 := range src {
		pubBytes, err := hex.DecodeString(pubHex)
		if err != nil {
			continue
		}
		pub, err := keys.NewPublicKeyFromBytes(pubBytes)
		if err != nil {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(sigB64)
		if err != nil {
			continue
		}
		dst[pub.String()] = &oracleSignature{pub: pub, sig: sig}
	}
}

// Start spawns the request poller and the timer/janitor. It returns once
// both goroutines are running; call Stop to cancel them.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.runPoller(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.runJanitor(ctx)
	}()
	s.log.Info("oracle service started", zap.Int("keys", len(s.cfg.Keys)))
}

// Stop cancels the poller and janitor and waits for both to return.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if err := s.store.Close(); err != nil {
		s.log.Warn("oracle: closing task store failed", zap.Error(err))
	}
	s.log.Info("oracle service stopped")
}

// localKeys returns the configured oracle keys that are members of
// nodes, i.e. the keys this process can usefully sign with right now.
func (s *Service) localKeys(nodes keys.PublicKeys) []*keys.PrivateKey {
	var out []*keys.PrivateKey
	for _, k := range s.cfg.Keys {
		if nodes.Contains(k.PublicKey()) {
			out = append(out, k)
		}
	}
	return out
}

// isDesignatedOracle reports whether any configured key is a member of
// the designated-oracle set at height, used by the janitor's liveness
// self-check.
func (s *Service) isDesignatedOracle(ctx context.Context, height uint32) (bool, error) {
	nodes, err := s.ledger.DesignatedOracles(ctx, height)
	if err != nil {
		return false, err
	}
	return len(s.localKeys(nodes.Nodes)) > 0, nil
}

// publishEvent reports a task lifecycle transition to the status feed,
// if one is configured. It never blocks the caller on a slow client.
func (s *Service) publishEvent(typ statusfeed.EventType, requestID uint64, detail string) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(statusfeed.Event{
		Type:      typ,
		RequestID: requestID,
		Time:      time.Now(),
		Detail:    detail,
	})
}
