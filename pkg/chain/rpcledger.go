package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/oraclegrid/node/pkg/crypto/hash"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/smartcontract"
	"github.com/oraclegrid/node/pkg/util"
)

// idCounter assigns JSON-RPC request ids, atomically so concurrent
// callers never race on the same id.
var idCounter uint64

func nextID() uint64 { return atomic.AddUint64(&idCounter, 1) }

// RPCLedger is a Ledger backed by a blockchain node's JSON-RPC surface.
// It never interprets script bytes or ledger state itself; it only
// shapes requests and unmarshals the noderesponds with.
type RPCLedger struct {
	endpoint string
	client   *http.Client
}

// NewRPCLedger returns a Ledger talking to the node at endpoint.
func NewRPCLedger(endpoint string, timeout time.Duration) *RPCLedger {
	return &RPCLedger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (l *RPCLedger) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: nextID(), Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return err
	}
	if rr.Error != nil {
		return fmt.Errorf("rpc %s: %s (%d)", method, rr.Error.Message, rr.Error.Code)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rr.Result, out)
}

// BlockHeight implements Ledger.
func (l *RPCLedger) BlockHeight(ctx context.Context) (uint32, error) {
	var height uint32
	err := l.call(ctx, "getblockcount", nil, &height)
	return height, err
}

type oracleNodesResult struct {
	Nodes []string `json:"nodes"` // hex-encoded compressed public keys
}

// DesignatedOracles implements Ledger.
func (l *RPCLedger) DesignatedOracles(ctx context.Context, height uint32) (OracleNodeSet, error) {
	var res oracleNodesResult
	if err := l.call(ctx, "getdesignatedbyrole", []interface{}{"Oracle", height}, &res); err != nil {
		return OracleNodeSet{}, err
	}
	nodes := make(keys.PublicKeys, 0, len(res.Nodes))
	for _, h := range res.Nodes {
		b, err := decodeHex(h)
		if err != nil {
			return OracleNodeSet{}, err
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return OracleNodeSet{}, err
		}
		nodes = append(nodes, pub)
	}
	m := smartcontract.Threshold(len(nodes))
	sort.Sort(nodes)
	script, err := smartcontract.CreateMultiSigVerificationScript(m, nodes)
	if err != nil {
		return OracleNodeSet{}, err
	}
	return OracleNodeSet{
		Height:    height,
		Nodes:     nodes,
		Threshold: m,
		Account:   scriptHash(script),
	}, nil
}

type rpcRequestDTO struct {
	ID               uint64 `json:"requestid"`
	OriginalTxID     string `json:"originaltxid"`
	URL              string `json:"url"`
	Filter           string `json:"filter"`
	GasForResponse   int64  `json:"gasforresponse"`
	CallbackContract string `json:"callbackcontract"`
	CallbackMethod   string `json:"callbackmethod"`
	UserData         string `json:"userdata"`
}

func (d rpcRequestDTO) toRequest() (*Request, error) {
	txID, err := decodeUint256(d.OriginalTxID)
	if err != nil {
		return nil, err
	}
	cb, err := decodeUint160(d.CallbackContract)
	if err != nil {
		return nil, err
	}
	data, err := decodeHex(d.UserData)
	if err != nil {
		return nil, err
	}
	return &Request{
		ID:               d.ID,
		OriginalTxID:     txID,
		URL:              d.URL,
		Filter:           d.Filter,
		GasForResponse:   d.GasForResponse,
		CallbackContract: cb,
		CallbackMethod:   d.CallbackMethod,
		UserData:         data,
	}, nil
}

// PendingRequests implements Ledger.
func (l *RPCLedger) PendingRequests(ctx context.Context) (map[uint64]*Request, error) {
	var dtos []rpcRequestDTO
	if err := l.call(ctx, "getoraclerequests", nil, &dtos); err != nil {
		return nil, err
	}
	out := make(map[uint64]*Request, len(dtos))
	for _, d := range dtos {
		req, err := d.toRequest()
		if err != nil {
			return nil, err
		}
		out[req.ID] = req
	}
	return out, nil
}

// RequestByID implements Ledger.
func (l *RPCLedger) RequestByID(ctx context.Context, id uint64) (*Request, error) {
	var dto *rpcRequestDTO
	if err := l.call(ctx, "getoraclerequestbyid", []interface{}{id}, &dto); err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, nil
	}
	return dto.toRequest()
}

// OriginalTransactionHeight implements Ledger. A not-yet-persisted
// originating transaction (seen only via the mempool) falls back to the
// current height.
func (l *RPCLedger) OriginalTransactionHeight(ctx context.Context, txID [32]byte) (uint32, error) {
	var height uint32
	if err := l.call(ctx, "gettransactionheight", []interface{}{encodeHex(txID[:])}, &height); err != nil {
		return l.BlockHeight(ctx)
	}
	return height, nil
}

// FeePerByte implements Ledger.
func (l *RPCLedger) FeePerByte(ctx context.Context) (int64, error) {
	var v int64
	err := l.call(ctx, "getfeeperbyte", nil, &v)
	return v, err
}

// ExecFeeFactor implements Ledger.
func (l *RPCLedger) ExecFeeFactor(ctx context.Context) (int64, error) {
	var v int64
	err := l.call(ctx, "getexecfeefactor", nil, &v)
	return v, err
}

type verifyResultDTO struct {
	State       string `json:"state"` // "HALT" or "FAULT"
	GasConsumed int64  `json:"gasconsumed,string"`
}

// VerifyOracleResponse implements Ledger.
func (l *RPCLedger) VerifyOracleResponse(ctx context.Context, tx *Transaction) (VerifyResult, error) {
	var dto verifyResultDTO
	params := []interface{}{
		base64.StdEncoding.EncodeToString(tx.Script),
		encodeSignersForRPC(tx.Signers),
	}
	if err := l.call(ctx, "invokeoracleverify", params, &dto); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Halted: dto.State == "HALT", GasConsumed: dto.GasConsumed}, nil
}

// SubmitTransaction implements Ledger.
func (l *RPCLedger) SubmitTransaction(ctx context.Context, tx *Transaction) error {
	raw := serializeSigned(tx)
	return l.call(ctx, "sendrawtransaction", []interface{}{base64.StdEncoding.EncodeToString(raw)}, nil)
}

func encodeSignersForRPC(signers []Signer) []map[string]interface{} {
	out := make([]map[string]interface{}, len(signers))
	for i, s := range signers {
		out[i] = map[string]interface{}{"account": encodeHex(s.Account.BytesBE())}
	}
	return out
}

func serializeSigned(tx *Transaction) []byte {
	buf := bytes.NewBuffer(tx.unsignedBytes())
	for _, w := range tx.Scripts {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(w.InvocationScript)))
		buf.Write(lenBuf[:])
		buf.Write(w.InvocationScript)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(w.VerificationScript)))
		buf.Write(lenBuf[:])
		buf.Write(w.VerificationScript)
	}
	return buf.Bytes()
}

func scriptHash(script []byte) util.Uint160 {
	return hash.Hash160(script)
}

func encodeHex(b []byte) string { return hex.EncodeToString(b) }

func decodeHex(s string) ([]byte, error) { return hex.DecodeString(s) }

func decodeUint256(s string) (util.Uint256, error) {
	b, err := decodeHex(s)
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

func decodeUint160(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, nil
	}
	b, err := decodeHex(s)
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}
