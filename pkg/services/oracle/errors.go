package oracle

import "errors"

// Sentinel errors surfaced by the signature aggregator and the
// inbound endpoint. The endpoint maps each to RPC error code -100
// with the corresponding message.
var (
	errInvalidSignature   = errors.New("invalid sign")
	errAlreadyFinished    = errors.New("request has already finished")
	errRequestNotFound    = errors.New("request is not found")
	errInvalidResponseSig = errors.New("invalid response transaction sign")
)
