// Package chain defines the data this service reads from and writes to
// the blockchain node, and the Ledger interface the core pipeline depends
// on. The blockchain node itself — ledger state, block production, the
// mempool — is an external collaborator; this package only models the
// shape of what crosses that boundary.
package chain

import (
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/util"
)

// OracleResponseCode is the closed set of outcomes a response transaction
// can carry.
type OracleResponseCode byte

// The full OracleResponseCode enum, in on-chain wire order.
const (
	Success               OracleResponseCode = 0x00
	ProtocolNotSupported  OracleResponseCode = 0x10
	ConsensusUnreachable  OracleResponseCode = 0x12
	NotFound              OracleResponseCode = 0x14
	Timeout               OracleResponseCode = 0x16
	Forbidden             OracleResponseCode = 0x18
	ResponseTooLarge      OracleResponseCode = 0x1a
	InsufficientFunds     OracleResponseCode = 0x1c
	ErrorCode             OracleResponseCode = 0xff
)

// String implements fmt.Stringer for logging.
func (c OracleResponseCode) String() string {
	switch c {
	case Success:
		return "Success"
	case ProtocolNotSupported:
		return "ProtocolNotSupported"
	case ConsensusUnreachable:
		return "ConsensusUnreachable"
	case NotFound:
		return "NotFound"
	case Timeout:
		return "Timeout"
	case Forbidden:
		return "Forbidden"
	case ResponseTooLarge:
		return "ResponseTooLarge"
	case InsufficientFunds:
		return "InsufficientFunds"
	default:
		return "Error"
	}
}

// MaxResultSize is the maximum length, in bytes, of a filtered oracle
// result that still fits into a response transaction.
const MaxResultSize = 0xffff

// MaxOracleRequestURLLength bounds a request's URL, mirroring the
// on-chain native contract's own validation of incoming requests.
const MaxOracleRequestURLLength = 256

// MaxValidUntilBlockIncrement bounds how far into the future a response
// transaction's ValidUntilBlock may be set relative to the original
// request transaction's block index.
const MaxValidUntilBlockIncrement = 2102400

// Request is an immutable snapshot of an on-chain oracle request.
type Request struct {
	ID               uint64
	OriginalTxID     util.Uint256
	URL              string
	Filter           string
	GasForResponse   int64
	CallbackContract util.Uint160
	CallbackMethod   string
	UserData         []byte
}

// Response is the payload a response transaction attribute carries.
type Response struct {
	ID     uint64
	Code   OracleResponseCode
	Result []byte
}

// OracleNodeSet is the ordered set of designated-oracle public keys at a
// given block height, plus the derived honest-majority threshold and the
// account hash of their combined multisig account.
type OracleNodeSet struct {
	Height    uint32
	Nodes     keys.PublicKeys
	Threshold int
	Account   util.Uint160
}
