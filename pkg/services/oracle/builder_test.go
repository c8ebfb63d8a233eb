package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/smartcontract"
	"github.com/oraclegrid/node/pkg/util"
)

type fakeLedger struct {
	height        uint32
	nodes         chain.OracleNodeSet
	origTxHeight  uint32
	feePerByte    int64
	execFeeFactor int64
	verify        chain.VerifyResult
}

func (l *fakeLedger) BlockHeight(context.Context) (uint32, error) { return l.height, nil }
func (l *fakeLedger) DesignatedOracles(context.Context, uint32) (chain.OracleNodeSet, error) {
	return l.nodes, nil
}
func (l *fakeLedger) PendingRequests(context.Context) (map[uint64]*chain.Request, error) {
	return nil, nil
}
func (l *fakeLedger) RequestByID(context.Context, uint64) (*chain.Request, error) { return nil, nil }
func (l *fakeLedger) OriginalTransactionHeight(context.Context, [32]byte) (uint32, error) {
	return l.origTxHeight, nil
}
func (l *fakeLedger) FeePerByte(context.Context) (int64, error)    { return l.feePerByte, nil }
func (l *fakeLedger) ExecFeeFactor(context.Context) (int64, error) { return l.execFeeFactor, nil }
func (l *fakeLedger) VerifyOracleResponse(context.Context, *chain.Transaction) (chain.VerifyResult, error) {
	return l.verify, nil
}
func (l *fakeLedger) SubmitTransaction(context.Context, *chain.Transaction) error { return nil }

func newFakeLedger(t *testing.T, n int) *fakeLedger {
	privs := newSignerKeys(t, n)
	var pubs keys.PublicKeys
	for _, p := range privs {
		pubs = append(pubs, p.PublicKey())
	}
	return &fakeLedger{
		height: 100,
		nodes: chain.OracleNodeSet{
			Height:    101,
			Nodes:     pubs,
			Threshold: smartcontract.Threshold(n),
			Account:   util.Uint160{9},
		},
		origTxHeight:  90,
		feePerByte:    1000,
		execFeeFactor: 30,
		verify:        chain.VerifyResult{Halted: true, GasConsumed: 1000000},
	}
}

func testParams() ChainParams {
	return ChainParams{OracleContract: util.Uint160{1}, ResponseScript: []byte{0x40}}
}

func TestBuildResponseTx_Success(t *testing.T) {
	ledger := newFakeLedger(t, 4)
	req := &chain.Request{ID: 1, GasForResponse: 100_000_000}
	resp := chain.Response{ID: 1, Code: chain.Success, Result: []byte(`{"ok":true}`)}

	tx, err := buildResponseTx(context.Background(), ledger, testParams(), req, resp)
	require.NoError(t, err)
	require.Equal(t, chain.Success, tx.Attribute.Code)
	require.Equal(t, resp.Result, tx.Attribute.Result)
	require.Equal(t, ledger.origTxHeight+chain.MaxValidUntilBlockIncrement, tx.ValidUntilBlock)
	require.Equal(t, req.GasForResponse-tx.NetworkFee, tx.SystemFee)
}

func TestBuildResponseTx_ResultTooLargeDegrades(t *testing.T) {
	ledger := newFakeLedger(t, 4)
	req := &chain.Request{ID: 2, GasForResponse: 100_000_000}
	oversized := make([]byte, chain.MaxResultSize+1)
	resp := chain.Response{ID: 2, Code: chain.Success, Result: oversized}

	tx, err := buildResponseTx(context.Background(), ledger, testParams(), req, resp)
	require.NoError(t, err)
	require.Equal(t, chain.ResponseTooLarge, tx.Attribute.Code)
	require.Nil(t, tx.Attribute.Result)
}

func TestBuildResponseTx_InsufficientFundsDegrades(t *testing.T) {
	ledger := newFakeLedger(t, 4)
	req := &chain.Request{ID: 3, GasForResponse: 1} // far too little gas
	resp := chain.Response{ID: 3, Code: chain.Success, Result: []byte(`{"a":1}`)}

	tx, err := buildResponseTx(context.Background(), ledger, testParams(), req, resp)
	require.NoError(t, err)
	require.Equal(t, chain.InsufficientFunds, tx.Attribute.Code)
	require.Nil(t, tx.Attribute.Result)
}

func TestBuildResponseTx_VerifyMustHalt(t *testing.T) {
	ledger := newFakeLedger(t, 4)
	ledger.verify = chain.VerifyResult{Halted: false}
	req := &chain.Request{ID: 4, GasForResponse: 100_000_000}
	resp := chain.Response{ID: 4, Code: chain.Success}

	_, err := buildResponseTx(context.Background(), ledger, testParams(), req, resp)
	require.Error(t, err)
}

func TestBuildBackupTx_ConsensusUnreachable(t *testing.T) {
	ledger := newFakeLedger(t, 4)
	req := &chain.Request{ID: 5, GasForResponse: 100_000_000}

	tx, err := buildBackupTx(context.Background(), ledger, testParams(), req)
	require.NoError(t, err)
	require.Equal(t, chain.ConsensusUnreachable, tx.Attribute.Code)
	require.Nil(t, tx.Attribute.Result)
}
