// Package hash provides the two hash primitives the oracle response
// pipeline depends on: sha256 (transaction signing hashes, message
// authentication) and hash160 (script hashes for signer accounts).
package hash

import (
	"crypto/sha256"

	"github.com/oraclegrid/node/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // still the NEO account script hash algorithm
)

// Sha256 computes a single SHA-256 digest of data.
func Sha256(data []byte) util.Uint256 {
	h := sha256.Sum256(data)
	return util.Uint256(h)
}

// DoubleSha256 computes SHA-256 twice, as used for checksum fields.
func DoubleSha256(data []byte) util.Uint256 {
	h1 := Sha256(data)
	return Sha256(h1.BytesBE())
}

// Checksum returns the leading 4 bytes of DoubleSha256(data), used by
// base58check address encoding.
func Checksum(data []byte) []byte {
	h := DoubleSha256(data)
	return h.BytesBE()[:4]
}

// Hash160 computes SHA-256 followed by RIPEMD-160, the account script
// hash algorithm used to derive signer accounts from verification scripts.
func Hash160(data []byte) util.Uint160 {
	sum := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sum[:])
	out, err := util.Uint160DecodeBytesBE(r.Sum(nil))
	if err != nil {
		// ripemd160.Size is fixed at 20 bytes, this can never happen.
		panic(err)
	}
	return out
}
