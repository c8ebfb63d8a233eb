// Package broadcaster implements the peer signature sender: it
// pushes a locally produced partial signature to every configured peer
// RPC node, fire-and-forget, over the same submitoracleresponse JSON-RPC
// method the inbound endpoint accepts.
package broadcaster

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/crypto/keys"
)

const (
	defaultSendTimeout  = 4 * time.Second
	defaultChanCapacity = 16
	// maxResponseBodyBytes bounds how much of a peer's reply this sender
	// reads before discarding it.
	maxResponseBodyBytes = 65535
)

// Broadcaster fans out oracle response signatures to a fixed set of
// peer RPC nodes, one dedicated sender goroutine per peer so a slow or
// unreachable peer never blocks delivery to the others.
type Broadcaster struct {
	log     *zap.Logger
	client  *http.Client
	timeout time.Duration
	queues  map[string]chan []interface{}
	idSeq   uint64
}

// New builds a Broadcaster with one outbound queue per address in
// nodes; an address listed more than once gets a single queue. Sends are
// dropped, not blocked on, when a peer's queue is full; the janitor's
// re-gossip pass will retry.
func New(log *zap.Logger, nodes []string, timeout time.Duration) *Broadcaster {
	if timeout == 0 {
		timeout = defaultSendTimeout
	}
	b := &Broadcaster{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		queues:  make(map[string]chan []interface{}, len(nodes)),
	}
	for _, addr := range nodes {
		ch := make(chan []interface{}, defaultChanCapacity)
		b.queues[addr] = ch
		go b.run(addr, ch)
	}
	return b
}

// SendResponse implements oracle.Broadcaster.
func (b *Broadcaster) SendResponse(priv *keys.PrivateKey, reqID uint64, txSig []byte) {
	pub := priv.PublicKey()
	msg := signedMessage(pub.Bytes(), reqID, txSig)
	msgSig, err := priv.Sign(msg)
	if err != nil {
		b.log.Warn("oracle: signing outbound gossip message failed", zap.Error(err))
		return
	}
	params := []interface{}{
		base64.StdEncoding.EncodeToString(pub.Bytes()),
		reqID,
		base64.StdEncoding.EncodeToString(txSig),
		base64.StdEncoding.EncodeToString(msgSig),
	}
	for addr, ch := range b.queues {
		select {
		case ch <- params:
		default:
			b.log.Warn("oracle: outbound queue full, dropping gossip", zap.String("addr", addr), zap.Uint64("id", reqID))
		}
	}
}

// signedMessage is the byte string the message signature covers:
// pubkey || LE64(request_id) || tx_sig.
func signedMessage(pubBytes []byte, reqID uint64, txSig []byte) []byte {
	out := make([]byte, len(pubBytes)+8+len(txSig))
	copy(out, pubBytes)
	binary.LittleEndian.PutUint64(out[len(pubBytes):], reqID)
	copy(out[len(pubBytes)+8:], txSig)
	return out
}

// Close stops every sender goroutine. Queued sends that have not yet
// gone out are dropped.
func (b *Broadcaster) Close() {
	for _, ch := range b.queues {
		close(ch)
	}
}

type rpcCall struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// nextID returns this Broadcaster's next outbound JSON-RPC call id,
// unique per Broadcaster across every peer's sender goroutine.
func (b *Broadcaster) nextID() uint64 {
	return atomic.AddUint64(&b.idSeq, 1)
}

func (b *Broadcaster) run(addr string, ch chan []interface{}) {
	log := b.log.With(zap.String("addr", addr))
	for params := range ch {
		if err := b.send(addr, params); err != nil {
			log.Warn("oracle: sending response to peer failed", zap.Error(err))
		}
	}
}

func (b *Broadcaster) send(addr string, params []interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	body, err := json.Marshal(rpcCall{JSONRPC: "2.0", ID: b.nextID(), Method: "submitoracleresponse", Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
	return err
}
