// Package keys wraps the ECDSA keypair used by a designated oracle to sign
// response transactions and peer gossip messages. The curve itself
// (P-256, the curve NEO-style designated-oracle accounts use) and the
// underlying ECDSA math are treated as an external primitive: this package
// never reimplements point arithmetic beyond the compressed-point
// decompression needed to decode a peer's public key, and delegates
// signing to a deterministic-nonce RFC 6979 implementation rather than
// rolling its own nonce generation.
package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/rfc6979"
	"github.com/oraclegrid/node/pkg/crypto/hash"
	"github.com/oraclegrid/node/pkg/util"
)

// Curve is the elliptic curve every designated oracle key is defined over.
func Curve() elliptic.Curve { return elliptic.P256() }

// PublicKey is a designated oracle's ECDSA public key, addressed and
// compared by its compressed byte encoding.
type PublicKey struct {
	X, Y *big.Int
}

// PublicKeys is a sortable list of public keys, ordered ascending by
// compressed byte encoding as required when assembling a multisig
// invocation script, where signatures are concatenated in ascending
// order of signer public key.
type PublicKeys []*PublicKey

func (p PublicKeys) Len() int      { return len(p) }
func (p PublicKeys) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p PublicKeys) Less(i, j int) bool {
	return bytes.Compare(p[i].Bytes(), p[j].Bytes()) < 0
}

// Contains reports whether pub is present in the list.
func (p PublicKeys) Contains(pub *PublicKey) bool {
	for _, k := range p {
		if k.Equal(pub) {
			return true
		}
	}
	return false
}

// Equal reports whether p and other are the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.X.Cmp(other.X) == 0 && p.Y.Cmp(other.Y) == 0
}

// Bytes returns the compressed SEC1 encoding of p (33 bytes: a parity
// prefix byte followed by the big-endian X coordinate).
func (p *PublicKey) Bytes() []byte {
	x := p.X.Bytes()
	out := make([]byte, 33)
	if p.Y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	copy(out[33-len(x):], x)
	return out
}

// String returns the hex encoding of the compressed key.
func (p *PublicKey) String() string { return hex.EncodeToString(p.Bytes()) }

// ScriptHash returns the account script hash for a single-signature
// verification script over p.
func (p *PublicKey) ScriptHash() util.Uint160 {
	return hash.Hash160(p.VerificationScript())
}

// VerificationScript returns a minimal single-signature verification
// script for p: PUSHDATA(pubkey) SYSCALL(CheckSig). It exists so a single
// key's script hash can be derived the same way a multisig account's is.
func (p *PublicKey) VerificationScript() []byte {
	b := p.Bytes()
	out := make([]byte, 0, len(b)+2)
	out = append(out, 0x0C, byte(len(b))) // PUSHDATA1-style length-prefixed push
	out = append(out, b...)
	out = append(out, 0x41) // SYSCALL marker for System.Crypto.CheckSig, resolved by the chain
	return out
}

// NewPublicKeyFromBytes decodes a compressed or uncompressed SEC1-encoded
// public key.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	switch len(b) {
	case 33:
		if b[0] != 0x02 && b[0] != 0x03 {
			return nil, errors.New("invalid compressed key prefix")
		}
		curve := Curve()
		x := new(big.Int).SetBytes(b[1:])
		y, err := decompressY(curve, x, uint(b[0]&1))
		if err != nil {
			return nil, err
		}
		return &PublicKey{X: x, Y: y}, nil
	case 65:
		if b[0] != 0x04 {
			return nil, errors.New("invalid uncompressed key prefix")
		}
		x := new(big.Int).SetBytes(b[1:33])
		y := new(big.Int).SetBytes(b[33:])
		if !Curve().IsOnCurve(x, y) {
			return nil, errors.New("point is not on curve")
		}
		return &PublicKey{X: x, Y: y}, nil
	default:
		return nil, fmt.Errorf("invalid public key length %d", len(b))
	}
}

// decompressY solves y^2 = x^3 - 3x + b (mod p) for the P-256 short
// Weierstrass curve and picks the root matching the requested parity.
// No example library in the pack ships P-256 point decompression (the
// pack's secp256k1 library only covers the Koblitz curve), so this is
// deliberately kept to the handful of big.Int calls the algorithm needs.
func decompressY(curve elliptic.Curve, x *big.Int, wantParity uint) (*big.Int, error) {
	p := curve.Params().P
	x3 := new(big.Int).Exp(x, big.NewInt(3), p)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	rhs := new(big.Int).Sub(x3, threeX)
	rhs.Add(rhs, curve.Params().B)
	rhs.Mod(rhs, p)
	y := new(big.Int).ModSqrt(rhs, p)
	if y == nil {
		return nil, errors.New("point is not on curve")
	}
	if y.Bit(0) != wantParity {
		y.Sub(p, y)
	}
	return y, nil
}

// MarshalJSON implements json.Marshaler.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p.Bytes()))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	pub, err := NewPublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	*p = *pub
	return nil
}

// Verify reports whether sig (raw r||s, each curve-order-sized) is a valid
// ECDSA signature by p over digest.
func (p *PublicKey) Verify(sig, digest []byte) bool {
	byteSize := (Curve().Params().N.BitLen() + 7) / 8
	if len(sig) != 2*byteSize {
		return false
	}
	r := new(big.Int).SetBytes(sig[:byteSize])
	s := new(big.Int).SetBytes(sig[byteSize:])
	pub := &ecdsa.PublicKey{Curve: Curve(), X: p.X, Y: p.Y}
	return ecdsa.Verify(pub, digest, r, s)
}

// PrivateKey is a designated oracle's ECDSA private key.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// NewPrivateKey generates a fresh private key on the oracle curve.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(Curve(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: *priv}, nil
}

// NewPrivateKeyFromBytes builds a private key from a raw scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	curve := Curve()
	x, y := curve.ScalarBaseMult(b)
	return &PrivateKey{PrivateKey: ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         new(big.Int).SetBytes(b),
	}}, nil
}

// PublicKey returns the public counterpart of k.
func (k *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{X: k.X, Y: k.Y}
}

// Bytes returns the raw big-endian scalar.
func (k *PrivateKey) Bytes() []byte {
	return k.D.Bytes()
}

// Sign computes a deterministic (RFC 6979) ECDSA signature over digest,
// returned as fixed-width r||s.
func (k *PrivateKey) Sign(digest []byte) ([]byte, error) {
	r, s := rfc6979.SignECDSA(&k.PrivateKey, digest, sha256.New)
	byteSize := (Curve().Params().N.BitLen() + 7) / 8
	sig := make([]byte, 2*byteSize)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[byteSize-len(rBytes):byteSize], rBytes)
	copy(sig[2*byteSize-len(sBytes):], sBytes)
	return sig, nil
}
