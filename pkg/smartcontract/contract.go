// Package smartcontract holds the two pieces of chain-facing domain logic
// the response-transaction builder and the signature aggregator both need:
// the honest-majority threshold formula, and construction of the
// multisig verification script for a designated-oracle set. Both must be
// byte-for-byte deterministic across independently-running oracles.
package smartcontract

import (
	"fmt"

	"github.com/oraclegrid/node/pkg/crypto/keys"
)

// opcodes used when assembling a NEO-style multisig verification script.
// Only the handful this package needs are named; a full VM instruction
// set has no home in this service, which never executes scripts, only
// builds and signs them.
const (
	opPushData1     = 0x0c
	opCheckMultisig = 0x42
	opPushInt8      = 0x00 // followed by a signed byte; used for values outside 0..16, which use PUSH0..PUSH16
)

// Threshold returns M, the minimum number of designated-oracle signatures
// that constitute an honest majority out of n oracles: M = N - floor((N-1)/3).
func Threshold(n int) int {
	if n <= 0 {
		return 0
	}
	return n - (n-1)/3
}

// CreateMultiSigVerificationScript builds the m-of-n verification script
// for pubs, in the exact form the chain's multisig account derivation
// expects: push m, push each compressed public key in the order given,
// push n, CHECKMULTISIG. Callers are responsible for passing pubs in
// ascending order: signatures are assembled in the same ascending order
// of signer public key, and the verification script must be built the
// same way so its account hash is deterministic across oracles.
func CreateMultiSigVerificationScript(m int, pubs keys.PublicKeys) ([]byte, error) {
	n := len(pubs)
	if m <= 0 || m > n {
		return nil, fmt.Errorf("invalid threshold %d for %d keys", m, n)
	}
	buf := make([]byte, 0, 3+n*35+3)
	buf = pushInt(buf, m)
	for _, p := range pubs {
		b := p.Bytes()
		buf = append(buf, opPushData1, byte(len(b)))
		buf = append(buf, b...)
	}
	buf = pushInt(buf, n)
	buf = append(buf, opCheckMultisig)
	return buf, nil
}

// checkSigPrice and checkMultisigPricePerKey approximate the chain's own
// interop pricing table for signature verification. The response builder
// only needs a value that is stable and identical across every honest
// oracle computing the same fee, not the chain's exact constant; these
// values are used as they are, nothing here looks the price up from the
// chain.
const (
	checkSigPrice           = 1 << 15
	checkMultisigPricePerKey = checkSigPrice
)

// MultiSignatureContractCost returns the interop-call cost of verifying
// an m-of-n multisig witness, in the same units ExecFeeFactor scales.
func MultiSignatureContractCost(m, n int) int64 {
	return int64(n) * checkMultisigPricePerKey
}

func pushInt(buf []byte, v int) []byte {
	if v >= 0 && v <= 16 {
		return append(buf, byte(0x10+v)) // PUSH0..PUSH16
	}
	return append(buf, opPushInt8, byte(int8(v)))
}
