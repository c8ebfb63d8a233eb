// Package address renders account script hashes as base58check strings,
// the form operators paste into config files and log lines reference.
package address

import (
	"errors"

	"github.com/mr-tron/base58"
	"github.com/oraclegrid/node/pkg/crypto/hash"
	"github.com/oraclegrid/node/pkg/util"
)

// version is the address version byte for this network's account addresses.
const version = 0x35

// Uint160ToString encodes a script hash as a base58check address.
func Uint160ToString(u util.Uint160) string {
	b := make([]byte, 21)
	b[0] = version
	copy(b[1:], u.BytesBE())
	sum := hash.Checksum(b)
	return base58.Encode(append(b, sum...))
}

// StringToUint160 decodes a base58check address back into a script hash.
func StringToUint160(s string) (util.Uint160, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return util.Uint160{}, err
	}
	if len(b) != 25 {
		return util.Uint160{}, errors.New("invalid address length")
	}
	if b[0] != version {
		return util.Uint160{}, errors.New("invalid address version")
	}
	body, sum := b[:21], b[21:]
	if string(hash.Checksum(body)) != string(sum) {
		return util.Uint160{}, errors.New("invalid address checksum")
	}
	return util.Uint160DecodeBytesBE(body[1:])
}
