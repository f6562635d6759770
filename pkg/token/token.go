// Package token defines fixed-width token descriptors used to decode (and
// encode) binary values from byte slices. Tokens are pure and stateless: a
// descriptor carries only its width and byte order.
package token

import (
	"encoding/binary"
)

// Token is implemented by every descriptor and reports the encoded width in
// bytes.
type Token interface {
	Len() int
}

// Number is implemented by all numeric descriptors. Uint64 returns the raw
// decoded value; signed descriptors return their two's-complement bit pattern
// zero-extended from the token width (not sign-extended), so only the 8-byte
// ones convert back with int64(); IntType.Get returns the signed value.
type Number interface {
	Token
	Uint64(b []byte, off int) uint64
}

// UintType reads and writes unsigned integers of 1, 2, 4 or 8 bytes.
type UintType struct {
	size int
	bo   binary.ByteOrder
}

func (t UintType) Len() int {
	return t.size
}

// Get decodes the value at b[off:].
func (t UintType) Get(b []byte, off int) uint64 {
	switch t.size {
	case 1:
		return uint64(b[off])
	case 2:
		return uint64(t.bo.Uint16(b[off : off+2]))
	case 4:
		return uint64(t.bo.Uint32(b[off : off+4]))
	default:
		return t.bo.Uint64(b[off : off+8])
	}
}

// Put encodes v at b[off:] and returns the offset past the written bytes.
func (t UintType) Put(b []byte, off int, v uint64) int {
	switch t.size {
	case 1:
		b[off] = byte(v)
	case 2:
		t.bo.PutUint16(b[off:off+2], uint16(v))
	case 4:
		t.bo.PutUint32(b[off:off+4], uint32(v))
	default:
		t.bo.PutUint64(b[off:off+8], v)
	}
	return off + t.size
}

func (t UintType) Uint64(b []byte, off int) uint64 {
	return t.Get(b, off)
}

// IntType reads and writes signed integers of 1, 2, 4 or 8 bytes.
type IntType struct {
	size int
	bo   binary.ByteOrder
}

func (t IntType) Len() int {
	return t.size
}

// Get decodes the value at b[off:], sign-extended to int64.
func (t IntType) Get(b []byte, off int) int64 {
	u := UintType{t.size, t.bo}.Get(b, off)
	shift := 64 - 8*t.size
	return int64(u<<shift) >> shift
}

// Put encodes v at b[off:] and returns the offset past the written bytes.
func (t IntType) Put(b []byte, off int, v int64) int {
	return UintType{t.size, t.bo}.Put(b, off, uint64(v))
}

func (t IntType) Uint64(b []byte, off int) uint64 {
	return UintType{t.size, t.bo}.Get(b, off)
}

// SyncSafeType reads the ID3v2 "sync-safe" integer: 4 bytes carrying a
// 28-bit value, with bit 7 of each byte always zero.
// See https://stackoverflow.com/a/7913100/192024
type SyncSafeType struct{}

func (SyncSafeType) Len() int {
	return 4
}

// Get decodes the 28-bit value at b[off:].
func (SyncSafeType) Get(b []byte, off int) uint32 {
	return uint32(b[off+3]&0x7F) |
		uint32(b[off+2]&0x7F)<<7 |
		uint32(b[off+1]&0x7F)<<14 |
		uint32(b[off]&0x7F)<<21
}

// Put encodes the low 28 bits of v at b[off:] and returns the offset past
// the written bytes.
func (SyncSafeType) Put(b []byte, off int, v uint32) int {
	b[off] = byte(v >> 21 & 0x7F)
	b[off+1] = byte(v >> 14 & 0x7F)
	b[off+2] = byte(v >> 7 & 0x7F)
	b[off+3] = byte(v & 0x7F)
	return off + 4
}

func (t SyncSafeType) Uint64(b []byte, off int) uint64 {
	return uint64(t.Get(b, off))
}

// StringType reads a fixed-length string. The bytes are returned verbatim,
// which covers both ASCII and UTF-8 payloads.
type StringType struct {
	N int
}

func (t StringType) Len() int {
	return t.N
}

// Get returns the string at b[off:].
func (t StringType) Get(b []byte, off int) string {
	return string(b[off : off+t.N])
}

var (
	UINT8    = UintType{1, binary.LittleEndian}
	UINT16LE = UintType{2, binary.LittleEndian}
	UINT16BE = UintType{2, binary.BigEndian}
	UINT32LE = UintType{4, binary.LittleEndian}
	UINT32BE = UintType{4, binary.BigEndian}
	UINT64LE = UintType{8, binary.LittleEndian}
	UINT64BE = UintType{8, binary.BigEndian}

	INT8    = IntType{1, binary.LittleEndian}
	INT16LE = IntType{2, binary.LittleEndian}
	INT16BE = IntType{2, binary.BigEndian}
	INT32LE = IntType{4, binary.LittleEndian}
	INT32BE = IntType{4, binary.BigEndian}
	INT64LE = IntType{8, binary.LittleEndian}
	INT64BE = IntType{8, binary.BigEndian}

	// UINT32SYNCSAFE is the ID3v2 sync-safe 28-bit integer.
	UINT32SYNCSAFE = SyncSafeType{}
)
