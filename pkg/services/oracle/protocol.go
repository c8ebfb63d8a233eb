package oracle

import (
	"context"
	"net/url"
	"strings"

	"github.com/oraclegrid/node/pkg/chain"
)

// Protocol fetches and returns the body backing one URI scheme. It never
// propagates errors: any failure it encounters is folded into the
// returned OracleResponseCode.
type Protocol interface {
	Process(ctx context.Context, uri *url.URL) (chain.OracleResponseCode, []byte)
}

// protocolRegistry is a static, lowercase-scheme-keyed lookup table.
type protocolRegistry map[string]Protocol

// newProtocolRegistry builds the registry this service ships with. The
// only reference protocol is HTTPS; additional schemes are out of
// scope, since off-chain protocol implementations beyond the reference
// one are external collaborators.
func newProtocolRegistry(https Protocol) protocolRegistry {
	return protocolRegistry{
		"https": https,
	}
}

// process resolves uri against the registry and runs it. A registry miss
// yields ProtocolNotSupported; a non-absolute URI yields Error.
func (r protocolRegistry) process(ctx context.Context, rawURL string) (chain.OracleResponseCode, []byte) {
	uri, err := url.ParseRequestURI(rawURL)
	if err != nil || uri.Scheme == "" || uri.Host == "" {
		return chain.ErrorCode, nil
	}
	p, ok := r[strings.ToLower(uri.Scheme)]
	if !ok {
		return chain.ProtocolNotSupported, nil
	}
	return runProtocol(ctx, p, uri)
}

// runProtocol isolates a protocol's panics: an unhandled exception in a
// protocol implementation must surface as Error, never crash the poller.
func runProtocol(ctx context.Context, p Protocol, uri *url.URL) (code chain.OracleResponseCode, body []byte) {
	defer func() {
		if recover() != nil {
			code, body = chain.ErrorCode, nil
		}
	}()
	return p.Process(ctx, uri)
}
