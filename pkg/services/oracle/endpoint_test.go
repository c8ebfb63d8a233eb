package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
)

type stubLedger struct {
	chain.Ledger
	requests map[uint64]*chain.Request
}

func (l *stubLedger) RequestByID(ctx context.Context, id uint64) (*chain.Request, error) {
	return l.requests[id], nil
}

func (l *stubLedger) BlockHeight(ctx context.Context) (uint32, error) { return 100, nil }

func (l *stubLedger) DesignatedOracles(ctx context.Context, height uint32) (chain.OracleNodeSet, error) {
	return chain.OracleNodeSet{Height: height, Threshold: 1}, nil
}

func newTestService(t *testing.T, l chain.Ledger) *Service {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	cfg := Config{Log: zap.NewNop(), Ledger: l, Keys: []*keys.PrivateKey{priv}}
	s, err := NewService(cfg)
	require.NoError(t, err)
	return s
}

func doSubmit(t *testing.T, s *Service, params []interface{}) *rpcReply {
	body, err := json.Marshal(rpcEnvelope{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "submitoracleresponse", Params: params})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var reply rpcReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	return &reply
}

func submitParams(t *testing.T, priv *keys.PrivateKey, reqID uint64, txSig []byte) []interface{} {
	pub := priv.PublicKey()
	msg := signedMessage(pub.Bytes(), reqID, txSig)
	msgSig, err := priv.Sign(msg)
	require.NoError(t, err)
	return []interface{}{
		base64.StdEncoding.EncodeToString(pub.Bytes()),
		reqID,
		base64.StdEncoding.EncodeToString(txSig),
		base64.StdEncoding.EncodeToString(msgSig),
	}
}

func TestSubmitOracleResponse_InvalidSignature(t *testing.T) {
	s := newTestService(t, &stubLedger{requests: map[uint64]*chain.Request{}})
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	params := submitParams(t, priv, 1, []byte("tx-sig"))
	params[3] = base64.StdEncoding.EncodeToString([]byte("not-a-real-signature-of-anything"))

	reply := doSubmit(t, s, params)
	require.NotNil(t, reply.Error)
	require.Equal(t, errInvalidSignature.Error(), reply.Error.Message)
}

func TestSubmitOracleResponse_RequestNotFound(t *testing.T) {
	s := newTestService(t, &stubLedger{requests: map[uint64]*chain.Request{}})
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	reply := doSubmit(t, s, submitParams(t, priv, 42, []byte("tx-sig")))
	require.NotNil(t, reply.Error)
	require.Equal(t, errRequestNotFound.Error(), reply.Error.Message)
}

func TestSubmitOracleResponse_AlreadyFinished(t *testing.T) {
	s := newTestService(t, &stubLedger{requests: map[uint64]*chain.Request{}})

	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	s.mu.Lock()
	s.finished[7] = time.Now()
	s.mu.Unlock()

	reply := doSubmit(t, s, submitParams(t, priv, 7, []byte("tx-sig")))
	require.NotNil(t, reply.Error)
	require.Equal(t, errAlreadyFinished.Error(), reply.Error.Message)
}

func TestSubmitOracleResponse_RecordsSpeculativeSignature(t *testing.T) {
	req := &chain.Request{ID: 5, URL: "https://example.com/data"}
	s := newTestService(t, &stubLedger{requests: map[uint64]*chain.Request{5: req}})
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	reply := doSubmit(t, s, submitParams(t, priv, 5, []byte("tx-sig")))
	require.Nil(t, reply.Error)

	s.mu.Lock()
	task, ok := s.pending[5]
	s.mu.Unlock()
	require.True(t, ok)
	require.Contains(t, task.Signs, priv.PublicKey().String())
}
