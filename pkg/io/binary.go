// Package io provides the small binary-serialization helpers the
// response-transaction builder needs: a growable byte writer used to
// assemble scripts, and a variable-length-size calculator used to size a
// transaction for its network fee before it is finalized.
package io

import "encoding/binary"

// BinWriter accumulates bytes written by the various Write* helpers,
// recording the first error so callers can check it once at the end
// instead of after every call.
type BinWriter struct {
	buf []byte
	Err error
}

// NewBufBinWriter returns a BinWriter with a fresh backing buffer.
func NewBufBinWriter() *BinWriter {
	return &BinWriter{}
}

// Bytes returns the bytes written so far.
func (w *BinWriter) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *BinWriter) Len() int { return len(w.buf) }

// WriteBytes appends b verbatim.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}

// WriteB appends a single byte.
func (w *BinWriter) WriteB(b byte) {
	if w.Err != nil {
		return
	}
	w.buf = append(w.buf, b)
}

// WriteU32LE appends v as 4 little-endian bytes.
func (w *BinWriter) WriteU32LE(v uint32) {
	if w.Err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64LE appends v as 8 little-endian bytes.
func (w *BinWriter) WriteU64LE(v uint64) {
	if w.Err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteVarUint appends v NEO-style variable-length encoded: a single byte
// for values below 0xFD, else a marker byte followed by a fixed-width
// little-endian integer.
func (w *BinWriter) WriteVarUint(v uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case v < 0xfd:
		w.WriteB(byte(v))
	case v <= 0xffff:
		w.WriteB(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		w.buf = append(w.buf, b[:]...)
	case v <= 0xffffffff:
		w.WriteB(0xfe)
		w.WriteU32LE(uint32(v))
	default:
		w.WriteB(0xff)
		w.WriteU64LE(v)
	}
}

// WriteVarBytes appends b prefixed with its NEO-style variable-length size.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// VarUintSize returns the number of bytes WriteVarUint(v) would write.
func VarUintSize(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// VarBytesSize returns the number of bytes WriteVarBytes(b) would write.
func VarBytesSize(b []byte) int {
	return VarUintSize(uint64(len(b))) + len(b)
}
