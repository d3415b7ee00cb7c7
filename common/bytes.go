package common

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// SliceToBytes reinterprets a slice of any type as a byte slice without
// copying. The returned slice aliases the input memory, so the caller must
// keep the input alive for as long as the bytes are in use.
//
// Parameters:
//   - data: the slice to reinterpret
//
// Returns:
//   - []byte: the underlying bytes, or nil for an empty slice
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	size := len(data) * int(unsafe.Sizeof(data[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), size)
}

// StructToBytes reinterprets a struct value as a byte slice without copying.
// The returned slice aliases the struct memory.
//
// Parameters:
//   - data: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: the underlying bytes of the struct
func StructToBytes[T any](data *T) []byte {
	size := int(unsafe.Sizeof(*data))
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), size)
}

// ByteReader is a little-endian read cursor over a byte slice, used by the
// binary asset codecs. The first out-of-bounds read records a sticky error and
// every subsequent read returns the zero value, so decode loops can run to
// completion and check Err once at the end.
type ByteReader struct {
	data []byte
	off  int
	err  error
}

// NewByteReader creates a reader positioned at the start of data.
//
// Parameters:
//   - data: the bytes to read from
//
// Returns:
//   - *ByteReader: the new reader
func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data}
}

// Err returns the sticky error, or nil if every read so far was in bounds.
func (r *ByteReader) Err() error {
	return r.err
}

// Offset returns the current read position in bytes.
func (r *ByteReader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int {
	if r.off >= len(r.data) {
		return 0
	}
	return len(r.data) - r.off
}

func (r *ByteReader) advance(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("unexpected end of data: need %d bytes at offset %d, have %d", n, r.off, len(r.data)-r.off)
		return false
	}
	return true
}

// U8 reads one byte.
func (r *ByteReader) U8() uint8 {
	if !r.advance(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// U32 reads a little-endian uint32.
func (r *ByteReader) U32() uint32 {
	if !r.advance(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// I32 reads a little-endian int32.
func (r *ByteReader) I32() int32 {
	return int32(r.U32())
}

// F32 reads a little-endian float32.
func (r *ByteReader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Rest returns every unread byte and advances the cursor to the end.
func (r *ByteReader) Rest() []byte {
	if r.err != nil {
		return nil
	}
	v := r.data[r.off:]
	r.off = len(r.data)
	return v
}
