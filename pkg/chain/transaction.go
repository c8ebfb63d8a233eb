package chain

import (
	"github.com/oraclegrid/node/pkg/crypto/hash"
	"github.com/oraclegrid/node/pkg/io"
	"github.com/oraclegrid/node/pkg/util"
)

// Signer is one of a transaction's two fixed signers.
type Signer struct {
	Account util.Uint160
	// AllowedContracts restricts the witness scope; nil means "none"
	// (the native Oracle contract's own witness), non-nil means the
	// scope is limited to exactly those contracts (the multisig
	// account's witness, scoped to the Oracle contract).
	AllowedContracts []util.Uint160
}

// Witness carries the invocation and verification scripts satisfying one
// Signer.
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// Transaction is the response transaction the builder constructs: enough
// of a real NEO transaction's shape to be sized, hashed, signed and have
// its witnesses completed, without depending on the chain's own
// transaction package.
type Transaction struct {
	Version         uint8
	Nonce           uint32
	SystemFee       int64
	NetworkFee      int64
	ValidUntilBlock uint32
	Script          []byte // fixed oracle-response invocation script
	Attribute       Response
	Signers         []Signer
	Scripts         []Witness

	hash    *util.Uint256
	sigHash *util.Uint256
}

// unsignedBytes serializes the fields that participate in the signing
// hash: everything except the witnesses.
func (t *Transaction) unsignedBytes() []byte {
	w := io.NewBufBinWriter()
	w.WriteB(t.Version)
	w.WriteU32LE(t.Nonce)
	w.WriteU64LE(uint64(t.SystemFee))
	w.WriteU64LE(uint64(t.NetworkFee))
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteVarBytes(t.Script)
	w.WriteVarUint(uint64(t.Attribute.ID))
	w.WriteB(byte(t.Attribute.Code))
	w.WriteVarBytes(t.Attribute.Result)
	w.WriteVarUint(uint64(len(t.Signers)))
	for _, s := range t.Signers {
		w.WriteBytes(s.Account.BytesBE())
	}
	return w.Bytes()
}

// SigningHash is the digest every partial ECDSA signature over this
// transaction is computed against. It is cached: witnesses are added
// after signing, so the digest is stable once the unsigned fields settle.
func (t *Transaction) SigningHash() util.Uint256 {
	if t.sigHash == nil {
		h := hash.Sha256(t.unsignedBytes())
		t.sigHash = &h
	}
	return *t.sigHash
}

// SizeExcludingAttributes returns the serialized size of the transaction, excluding
// attributes, as required by the fee-truncation policy in the builder.
func (t *Transaction) SizeExcludingAttributes() int {
	size := 1 + 4 + 8 + 8 + 4 // version, nonce, sysfee, netfee, vub
	size += io.VarBytesSize(t.Script)
	size += io.VarUintSize(uint64(len(t.Signers)))
	for range t.Signers {
		size += util.Uint160Size + 1 // account + scope byte
	}
	size += io.VarUintSize(uint64(len(t.Scripts)))
	for _, s := range t.Scripts {
		size += io.VarBytesSize(s.InvocationScript)
		size += io.VarBytesSize(s.VerificationScript)
	}
	return size
}

// AttributesSize returns the serialized size of the single
// OracleResponse attribute this transaction carries.
func (t *Transaction) AttributesSize() int {
	return 1 + io.VarUintSize(uint64(t.Attribute.ID)) + 1 + io.VarBytesSize(t.Attribute.Result)
}

// ScriptHashesForVerifying returns the two signer account hashes in the
// positional order their witnesses must appear in.
func (t *Transaction) ScriptHashesForVerifying() []util.Uint160 {
	out := make([]util.Uint160, len(t.Signers))
	for i, s := range t.Signers {
		out[i] = s.Account
	}
	return out
}
