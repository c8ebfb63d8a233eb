package chain

import "context"

// VerifyResult is what running the native Oracle contract's verify method
// under a verification engine over a cloned snapshot reports back.
type VerifyResult struct {
	Halted      bool
	GasConsumed int64
}

// Ledger is the chain collaborator contract: everything the oracle
// service reads from or writes to the blockchain node. Implementations
// talk to the node over whatever transport it exposes (JSON-RPC here);
// the core pipeline never depends on ledger internals directly.
type Ledger interface {
	// BlockHeight returns the current persisted block height.
	BlockHeight(ctx context.Context) (uint32, error)

	// DesignatedOracles returns the designated-oracle set effective at
	// the given block height, in the chain's canonical order.
	DesignatedOracles(ctx context.Context, height uint32) (OracleNodeSet, error)

	// PendingRequests returns every request the native Oracle contract
	// has not yet recorded a response for.
	PendingRequests(ctx context.Context) (map[uint64]*Request, error)

	// RequestByID looks up a single pending request, returning
	// (nil, nil) if it is no longer pending (already answered or
	// unknown).
	RequestByID(ctx context.Context, id uint64) (*Request, error)

	// OriginalTransactionHeight returns the block index of a request's
	// originating transaction, used to compute ValidUntilBlock. It
	// returns the current height if the originating transaction has not
	// yet been persisted (it was seen via the mempool).
	OriginalTransactionHeight(ctx context.Context, txID [32]byte) (uint32, error)

	// FeePerByte returns the current network fee-per-byte policy value.
	FeePerByte(ctx context.Context) (int64, error)

	// ExecFeeFactor returns the current execution fee factor policy
	// value, used to price the multisig verification cost.
	ExecFeeFactor(ctx context.Context) (int64, error)

	// VerifyOracleResponse runs the native Oracle contract's verify
	// method against tx under a verification execution engine on a
	// cloned snapshot, without committing anything.
	VerifyOracleResponse(ctx context.Context, tx *Transaction) (VerifyResult, error)

	// SubmitTransaction hands a fully-witnessed transaction to the
	// node's mempool. This is fire-and-forget from the core's point of
	// view: the node either accepts it into the mempool or rejects it,
	// and either way the core has done its job.
	SubmitTransaction(ctx context.Context, tx *Transaction) error
}
