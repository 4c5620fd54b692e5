// Package chunk provides Chunk, a bounded, allocation-free view over a
// contiguous byte range. A Chunk never owns the bytes it describes; it is a
// window into a Region (or any other byte slice) and stays valid only as
// long as its backing storage does.
package chunk

import (
	"bytes"
	"encoding/hex"

	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Chunk is a bounded view over contiguous bytes.
type Chunk struct {
	data []byte
}

// Empty is the canonical zero-length chunk. All zero-length chunks compare
// equal regardless of where they were sliced from.
var Empty = Chunk{data: []byte{}}

// New wraps data as a Chunk without copying it.
func New(data []byte) Chunk {
	if len(data) == 0 {
		return Empty
	}

	return Chunk{data: data}
}

// Len returns the chunk's length in bytes.
func (c Chunk) Len() int {
	return len(c.data)
}

// Bytes returns the chunk's underlying bytes. Callers must not retain the
// slice past the lifetime of the chunk's backing storage.
func (c Chunk) Bytes() []byte {
	return c.data
}

// Slice returns the sub-chunk [offset, offset+length) of c. It is constant
// time and allocation-free. It fails with OutOfRange when the requested
// range exceeds c.
func (c Chunk) Slice(offset, length int) (Chunk, error) {
	if offset < 0 || length < 0 || offset+length > len(c.data) {
		return Chunk{}, elferrors.OutOfRange(uint64(offset), uint64(length), uint64(len(c.data)))
	}

	return New(c.data[offset : offset+length]), nil
}

// Equal reports whether two chunks hold byte-identical content. Two
// zero-length chunks are always equal.
func (c Chunk) Equal(other Chunk) bool {
	if c.Len() == 0 && other.Len() == 0 {
		return true
	}

	return bytes.Equal(c.data, other.data)
}

// Hex renders the chunk as a lowercase hex string, for diagnostics.
func (c Chunk) Hex() string {
	return hex.EncodeToString(c.data)
}

// Concat copies the contents of all chunks into one new, owned Chunk.
func Concat(chunks ...Chunk) Chunk {
	total := 0
	for _, c := range chunks {
		total += c.Len()
	}

	if total == 0 {
		return Empty
	}

	buf := make([]byte, 0, total)
	for _, c := range chunks {
		buf = append(buf, c.data...)
	}

	return New(buf)
}
