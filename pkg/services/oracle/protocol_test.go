package oracle

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oraclegrid/node/pkg/chain"
)

type stubProtocol struct {
	code  chain.OracleResponseCode
	body  []byte
	panic bool
}

func (p stubProtocol) Process(ctx context.Context, uri *url.URL) (chain.OracleResponseCode, []byte) {
	if p.panic {
		panic("protocol implementation blew up")
	}
	return p.code, p.body
}

func TestProtocolRegistry_UnsupportedScheme(t *testing.T) {
	r := newProtocolRegistry(stubProtocol{code: chain.Success})
	code, _ := r.process(context.Background(), "ftp://example.com/x")
	require.Equal(t, chain.ProtocolNotSupported, code)
}

func TestProtocolRegistry_MalformedURL(t *testing.T) {
	r := newProtocolRegistry(stubProtocol{code: chain.Success})
	code, _ := r.process(context.Background(), "not a url")
	require.Equal(t, chain.ErrorCode, code)
}

func TestProtocolRegistry_DispatchesToHTTPS(t *testing.T) {
	r := newProtocolRegistry(stubProtocol{code: chain.Success, body: []byte("hi")})
	code, body := r.process(context.Background(), "https://example.com/x")
	require.Equal(t, chain.Success, code)
	require.Equal(t, []byte("hi"), body)
}

func TestProtocolRegistry_RecoversFromPanic(t *testing.T) {
	r := newProtocolRegistry(stubProtocol{panic: true})
	code, body := r.process(context.Background(), "https://example.com/x")
	require.Equal(t, chain.ErrorCode, code)
	require.Nil(t, body)
}
