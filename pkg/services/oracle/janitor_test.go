package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
)

type recordingBroadcaster struct {
	sent []uint64
}

func (b *recordingBroadcaster) SendResponse(priv *keys.PrivateKey, reqID uint64, txSig []byte) {
	b.sent = append(b.sent, reqID)
}

type janitorStubLedger struct {
	chain.Ledger
	height uint32
	nodes  keys.PublicKeys
}

func (l *janitorStubLedger) BlockHeight(ctx context.Context) (uint32, error) { return l.height, nil }

func (l *janitorStubLedger) DesignatedOracles(ctx context.Context, height uint32) (chain.OracleNodeSet, error) {
	return chain.OracleNodeSet{Height: height, Nodes: l.nodes, Threshold: 1}, nil
}

func TestJanitor_EvictsExpiredTasks(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	s, err := NewService(Config{
		Log:            zap.NewNop(),
		Ledger:         &janitorStubLedger{nodes: keys.PublicKeys{priv.PublicKey()}},
		Keys:           []*keys.PrivateKey{priv},
		MaxTaskTimeout: time.Minute,
	})
	require.NoError(t, err)

	old := newOracleTask(&chain.Request{ID: 1}, time.Now().Add(-2*time.Minute))
	s.mu.Lock()
	s.pending[1] = old
	s.mu.Unlock()

	s.resendAndEvict(context.Background())

	s.mu.Lock()
	_, stillPending := s.pending[1]
	s.mu.Unlock()
	require.False(t, stillPending)
}

func TestJanitor_ResendsBackupSignatureInWindow(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	bc := &recordingBroadcaster{}
	s, err := NewService(Config{
		Log:             zap.NewNop(),
		Ledger:          &janitorStubLedger{nodes: keys.PublicKeys{pub}},
		Keys:            []*keys.PrivateKey{priv},
		RefreshInterval: time.Minute,
		Broadcaster:     bc,
	})
	require.NoError(t, err)

	task := newOracleTask(&chain.Request{ID: 2}, time.Now().Add(-90*time.Second))
	task.BackupSigns[pub.String()] = &oracleSignature{pub: pub, sig: []byte("sig"), verified: true}
	s.mu.Lock()
	s.pending[2] = task
	s.mu.Unlock()

	s.resendAndEvict(context.Background())
	require.Equal(t, []uint64{2}, bc.sent)
}

func TestJanitor_ExpiresFinishedCache(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	s, err := NewService(Config{
		Log:              zap.NewNop(),
		Ledger:           &janitorStubLedger{},
		Keys:             []*keys.PrivateKey{priv},
		FinishedCacheTTL: time.Minute,
	})
	require.NoError(t, err)

	s.mu.Lock()
	s.finished[9] = time.Now().Add(-2 * time.Minute)
	s.finished[10] = time.Now()
	s.mu.Unlock()

	s.expireFinished()

	s.mu.Lock()
	_, expired := s.finished[9]
	_, kept := s.finished[10]
	s.mu.Unlock()
	require.False(t, expired)
	require.True(t, kept)
}

func TestJanitor_IsDesignatedOracle(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	other, err := keys.NewPrivateKey()
	require.NoError(t, err)

	s, err := NewService(Config{
		Log:    zap.NewNop(),
		Ledger: &janitorStubLedger{nodes: keys.PublicKeys{other.PublicKey()}},
		Keys:   []*keys.PrivateKey{priv},
	})
	require.NoError(t, err)

	live, err := s.isDesignatedOracle(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, live)

	s.cfg.Ledger = &janitorStubLedger{nodes: keys.PublicKeys{priv.PublicKey()}}
	s.ledger = s.cfg.Ledger
	live, err = s.isDesignatedOracle(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, live)
}
