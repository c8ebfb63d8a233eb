package taskstore

import (
	"encoding/json"
	"fmt"

	"github.com/pierrec/lz4"
)

// maxDecompressedSize bounds how large a single stored record is allowed
// to grow into; task snapshots are small maps of pubkeys to signatures,
// so this is generous headroom rather than a load-bearing limit.
const maxDecompressedSize = 1 << 20

// encode JSON-marshals v and lz4-compresses the result as a single block.
func encode(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dest := make([]byte, lz4.CompressBlockBound(len(raw)))
	size, err := lz4.CompressBlock(raw, dest, nil)
	if err != nil {
		return nil, fmt.Errorf("taskstore: compress: %w", err)
	}
	// CompressBlock returns size 0 when the input does not compress;
	// store it verbatim behind a one-byte flag (0 raw, 1 compressed) so
	// decode can tell the two cases apart.
	if size == 0 {
		return append([]byte{0}, raw...), nil
	}
	return append([]byte{1}, dest[:size]...), nil
}

func decode(stored []byte, v interface{}) error {
	if len(stored) == 0 {
		return fmt.Errorf("taskstore: empty record")
	}
	flag, body := stored[0], stored[1:]
	if flag == 0 {
		return json.Unmarshal(body, v)
	}
	dest := make([]byte, maxDecompressedSize)
	size, err := lz4.UncompressBlock(body, dest)
	if err != nil {
		return fmt.Errorf("taskstore: decompress: %w", err)
	}
	return json.Unmarshal(dest[:size], v)
}
