package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oraclegrid/node/pkg/crypto/keys"
)

// rpcErrorCode is the RPC error number this method's failure modes are
// reported under; every one of them shares error code -100.
const rpcErrorCode = -100

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

// Handler returns an http.Handler exposing the inbound signature
// endpoint at the JSON-RPC method submitoracleresponse. Mount it under
// whatever path the surrounding RPC server uses; this handler does not
// implement a general JSON-RPC dispatcher, only this one method.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRPC).Methods(http.MethodPost)
	return r
}

func (s *Service) handleRPC(w http.ResponseWriter, r *http.Request) {
	var env rpcEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeRPCError(w, nil, "invalid request")
		return
	}
	if env.Method != "submitoracleresponse" {
		writeRPCError(w, env.ID, "method not found")
		return
	}

	pub, reqID, txSig, msgSig, err := parseSubmitParams(env.Params)
	if err != nil {
		writeRPCError(w, env.ID, err.Error())
		return
	}

	if err := s.submitOracleResponse(r.Context(), pub, reqID, txSig, msgSig); err != nil {
		writeRPCError(w, env.ID, err.Error())
		return
	}

	writeRPCResult(w, env.ID, struct{}{})
}

// submitOracleResponse checks the message signature first, then delegates
// to the aggregator. The already-finished and request-not-found checks
// are left to AddResponseTxSign, which makes them under its lock, so a race against a
// concurrent finish or eviction still lands on the right sentinel rather
// than a stale not-found.
func (s *Service) submitOracleResponse(ctx context.Context, pub *keys.PublicKey, reqID uint64, txSig, msgSig []byte) error {
	msg := signedMessage(pub.Bytes(), reqID, txSig)
	if !pub.Verify(msgSig, msg) {
		return errInvalidSignature
	}
	return s.AddResponseTxSign(ctx, reqID, pub, txSig, nil, nil, nil)
}

func signedMessage(pubBytes []byte, reqID uint64, txSig []byte) []byte {
	out := make([]byte, len(pubBytes)+8+len(txSig))
	copy(out, pubBytes)
	binary.LittleEndian.PutUint64(out[len(pubBytes):], reqID)
	copy(out[len(pubBytes)+8:], txSig)
	return out
}

func parseSubmitParams(params []interface{}) (pub *keys.PublicKey, reqID uint64, txSig, msgSig []byte, err error) {
	if len(params) != 4 {
		return nil, 0, nil, nil, errors.New("expected 4 params")
	}
	pubStr, ok := params[0].(string)
	if !ok {
		return nil, 0, nil, nil, errors.New("invalid pubkey param")
	}
	pubBytes, err := base64.StdEncoding.DecodeString(pubStr)
	if err != nil {
		return nil, 0, nil, nil, errors.New("invalid pubkey encoding")
	}
	pub, err = keys.NewPublicKeyFromBytes(pubBytes)
	if err != nil {
		return nil, 0, nil, nil, errors.New("invalid pubkey")
	}

	idFloat, ok := params[1].(float64)
	if !ok || idFloat < 0 {
		return nil, 0, nil, nil, errors.New("invalid request id")
	}
	reqID = uint64(idFloat)

	txSigStr, ok := params[2].(string)
	if !ok {
		return nil, 0, nil, nil, errors.New("invalid tx sig param")
	}
	txSig, err = base64.StdEncoding.DecodeString(txSigStr)
	if err != nil {
		return nil, 0, nil, nil, errors.New("invalid tx sig encoding")
	}

	msgSigStr, ok := params[3].(string)
	if !ok {
		return nil, 0, nil, nil, errors.New("invalid msg sig param")
	}
	msgSig, err = base64.StdEncoding.DecodeString(msgSigStr)
	if err != nil {
		return nil, 0, nil, nil, errors.New("invalid msg sig encoding")
	}
	return pub, reqID, txSig, msgSig, nil
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, msg string) {
	writeJSON(w, rpcReply{JSONRPC: "2.0", ID: id, Error: &rpcErrorBody{Code: rpcErrorCode, Message: msg}})
}

func writeRPCResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	writeJSON(w, rpcReply{JSONRPC: "2.0", ID: id, Result: result})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
