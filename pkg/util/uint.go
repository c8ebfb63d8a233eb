// Package util holds the small fixed-size value types shared across the
// oracle service: 160-bit script hashes and 256-bit transaction/block hashes.
package util

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint160 is a 20-byte big-endian array, used to store script hashes.
type Uint160 [Uint160Size]byte

// Uint256 is a 32-byte big-endian array, used to store block and
// transaction hashes.
type Uint256 [Uint256Size]byte

// BytesBE returns a big-endian byte representation of u.
func (u Uint160) BytesBE() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// Equals returns true when both hashes are equal.
func (u Uint160) Equals(other Uint160) bool { return u == other }

// String implements fmt.Stringer.
func (u Uint160) String() string { return hex.EncodeToString(u.BytesBE()) }

// Uint160DecodeBytesBE decodes a big-endian byte slice into a Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected %d bytes, got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// Uint160DecodeStringBE decodes a hex string, with or without a leading
// "0x", into a Uint160.
func Uint160DecodeStringBE(s string) (u Uint160, err error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, fmt.Errorf("invalid hex: %w", err)
	}
	return Uint160DecodeBytesBE(b)
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint256) BytesBE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// Equals returns true when both hashes are equal.
func (u Uint256) Equals(other Uint256) bool { return u == other }

// String implements fmt.Stringer.
func (u Uint256) String() string { return hex.EncodeToString(u.BytesBE()) }

// Uint256DecodeBytesBE decodes a big-endian byte slice into a Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, errors.New("wrong Uint256 length")
	}
	copy(u[:], b)
	return u, nil
}
