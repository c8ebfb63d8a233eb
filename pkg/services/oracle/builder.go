package oracle

import (
	"context"
	"fmt"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/smartcontract"
	"github.com/oraclegrid/node/pkg/util"
)

// ChainParams carries the two chain-defined constants the builder needs
// but does not derive itself: the native Oracle contract's own account
// hash and the fixed invocation script every response transaction
// carries. Both are supplied by the caller (the start command reads them
// from the Oracle section of the config file); treating them as opaque inputs keeps the builder
// itself free of any native-contract knowledge.
type ChainParams struct {
	OracleContract util.Uint160
	ResponseScript []byte
}

// buildResponseTx deterministically constructs the response transaction
// for resp against req. Every honest oracle running this with
// the same chain state and the same resp must produce a byte-identical
// transaction, so nothing here may depend on wall-clock time, map
// iteration order, or any other non-deterministic input.
func buildResponseTx(ctx context.Context, ledger chain.Ledger, params ChainParams, req *chain.Request, resp chain.Response) (*chain.Transaction, error) {
	height, err := ledger.BlockHeight(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := ledger.DesignatedOracles(ctx, height+1)
	if err != nil {
		return nil, err
	}

	vub, err := ledger.OriginalTransactionHeight(ctx, req.OriginalTxID)
	if err != nil {
		return nil, err
	}
	vub += chain.MaxValidUntilBlockIncrement

	verifyScript, err := smartcontract.CreateMultiSigVerificationScript(nodes.Threshold, nodes.Nodes)
	if err != nil {
		return nil, err
	}

	tx := &chain.Transaction{
		Version:         0,
		Nonce:           0,
		ValidUntilBlock: vub,
		Script:          params.ResponseScript,
		Attribute:       resp,
		Signers: []chain.Signer{
			{Account: params.OracleContract, AllowedContracts: nil},
			{Account: nodes.Account, AllowedContracts: []util.Uint160{params.OracleContract}},
		},
		Scripts: []chain.Witness{
			{},
			{VerificationScript: verifyScript},
		},
	}

	verify, err := ledger.VerifyOracleResponse(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !verify.Halted {
		return nil, fmt.Errorf("oracle: native oracle verify did not halt")
	}

	execFeeFactor, err := ledger.ExecFeeFactor(ctx)
	if err != nil {
		return nil, err
	}
	feePerByte, err := ledger.FeePerByte(ctx)
	if err != nil {
		return nil, err
	}

	networkFee := verify.GasConsumed + execFeeFactor*smartcontract.MultiSignatureContractCost(nodes.Threshold, len(nodes.Nodes))

	size := tx.SizeExcludingAttributes()
	attrSize := tx.AttributesSize()

	switch {
	case len(tx.Attribute.Result) > chain.MaxResultSize:
		tx.Attribute.Code = chain.ResponseTooLarge
		tx.Attribute.Result = nil
		attrSize = tx.AttributesSize()
	case networkFee+int64(size+attrSize)*feePerByte > req.GasForResponse:
		tx.Attribute.Code = chain.InsufficientFunds
		tx.Attribute.Result = nil
		attrSize = tx.AttributesSize()
	}

	networkFee += int64(size+attrSize) * feePerByte
	tx.NetworkFee = networkFee
	tx.SystemFee = req.GasForResponse - networkFee
	return tx, nil
}

// buildBackupTx builds the degenerate backup transaction carrying
// ConsensusUnreachable and an empty result, by the same procedure.
func buildBackupTx(ctx context.Context, ledger chain.Ledger, params ChainParams, req *chain.Request) (*chain.Transaction, error) {
	return buildResponseTx(ctx, ledger, params, req, chain.Response{
		ID:   req.ID,
		Code: chain.ConsensusUnreachable,
	})
}
