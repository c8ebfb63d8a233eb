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

type aggregatorStubLedger struct {
	chain.Ledger
	reqs      map[uint64]*chain.Request
	nodes     keys.PublicKeys
	submitted []*chain.Transaction
}

func (l *aggregatorStubLedger) RequestByID(ctx context.Context, id uint64) (*chain.Request, error) {
	return l.reqs[id], nil
}

func (l *aggregatorStubLedger) BlockHeight(ctx context.Context) (uint32, error) { return 1, nil }

func (l *aggregatorStubLedger) DesignatedOracles(ctx context.Context, height uint32) (chain.OracleNodeSet, error) {
	return chain.OracleNodeSet{Height: height, Nodes: l.nodes, Threshold: 1}, nil
}

func (l *aggregatorStubLedger) SubmitTransaction(ctx context.Context, tx *chain.Transaction) error {
	l.submitted = append(l.submitted, tx)
	return nil
}

func TestAggregator_AlreadyFinishedRejected(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	s, err := NewService(Config{Log: zap.NewNop(), Ledger: &aggregatorStubLedger{}, Keys: []*keys.PrivateKey{priv}})
	require.NoError(t, err)

	s.mu.Lock()
	s.finished[1] = time.Now()
	s.mu.Unlock()

	err = s.AddResponseTxSign(context.Background(), 1, priv.PublicKey(), []byte("sig"), nil, nil, nil)
	require.ErrorIs(t, err, errAlreadyFinished)
}

func TestAggregator_UnknownRequestRejected(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	s, err := NewService(Config{Log: zap.NewNop(), Ledger: &aggregatorStubLedger{reqs: map[uint64]*chain.Request{}}, Keys: []*keys.PrivateKey{priv}})
	require.NoError(t, err)

	err = s.AddResponseTxSign(context.Background(), 99, priv.PublicKey(), []byte("sig"), nil, nil, nil)
	require.ErrorIs(t, err, errRequestNotFound)
}

func TestAggregator_SpeculativeSignatureRecordedBeforeTxExists(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	ledger := &aggregatorStubLedger{reqs: map[uint64]*chain.Request{5: {ID: 5}}}
	s, err := NewService(Config{Log: zap.NewNop(), Ledger: ledger, Keys: []*keys.PrivateKey{priv}})
	require.NoError(t, err)

	err = s.AddResponseTxSign(context.Background(), 5, priv.PublicKey(), []byte("sig"), nil, nil, nil)
	require.NoError(t, err)

	s.mu.Lock()
	task, ok := s.pending[5]
	s.mu.Unlock()
	require.True(t, ok)
	require.Contains(t, task.Signs, priv.PublicKey().String())
}

func TestAggregator_FinalizesAndSubmitsAtThreshold(t *testing.T) {
	privs := newSignerKeys(t, 1)
	var pubs keys.PublicKeys
	for _, p := range privs {
		pubs = append(pubs, p.PublicKey())
	}
	ledger := &aggregatorStubLedger{reqs: map[uint64]*chain.Request{7: {ID: 7}}, nodes: pubs}
	s, err := NewService(Config{Log: zap.NewNop(), Ledger: ledger, Keys: privs})
	require.NoError(t, err)

	tx := newFakeTx(1)
	backupTx := newFakeTx(2)
	h := tx.SigningHash()
	sig, err := privs[0].Sign(h[:])
	require.NoError(t, err)

	err = s.AddResponseTxSign(context.Background(), 7, pubs[0], sig, tx, backupTx, []byte("backup-sig"))
	require.NoError(t, err)

	require.Len(t, ledger.submitted, 1)
	s.mu.Lock()
	_, stillPending := s.pending[7]
	_, isFinished := s.finished[7]
	s.mu.Unlock()
	require.False(t, stillPending)
	require.True(t, isFinished)
}
