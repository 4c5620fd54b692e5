// Package region implements Region, the owned, resizable byte buffer that
// backs an in-memory ELF image. Sections, program headers, and chains vend
// chunk.Chunk views that alias into a Region; a Region's identity is stable
// for as long as it is live, but any splice invalidates chunks that aliased
// the spliced range.
package region

import (
	"os"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Region is an owned, mutable backing store of bytes.
type Region struct {
	data []byte
}

// FromFile loads the entire contents of path into a new Region. On
// supported platforms the file is mapped into memory (see
// region_unix.go / region_windows.go); on failure, or where mapping isn't
// available, it falls back to a plain read.
func FromFile(path string) (*Region, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, elferrors.NotFound(path)
		}

		return nil, elferrors.IoError("stat region file", err)
	}

	if info.Size() == 0 {
		return &Region{data: []byte{}}, nil
	}

	data, err := mapFile(path, info.Size())
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, elferrors.IoError("read region file", err)
		}
	}

	return &Region{data: data}, nil
}

// Empty creates a new zero-filled Region of the given size.
func Empty(size int) *Region {
	return &Region{data: make([]byte, size)}
}

// Len returns the current length of the region in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Chunk returns a view of the entire region.
func (r *Region) Chunk() chunk.Chunk {
	return chunk.New(r.data)
}

// ChunkAt returns a view of [offset, offset+length) within the region. It
// fails with OutOfRange when the range exceeds the region's bounds.
func (r *Region) ChunkAt(offset, length uint64) (chunk.Chunk, error) {
	if offset > uint64(len(r.data)) || length > uint64(len(r.data))-offset {
		return chunk.Chunk{}, elferrors.OutOfRange(offset, length, uint64(len(r.data)))
	}

	return chunk.New(r.data[offset : offset+length]), nil
}

// Append grows the region by appending data at its end, returning the new
// length. Chunks vended before the append remain valid: append never
// reorders or shifts existing bytes.
func (r *Region) Append(data []byte) int {
	r.data = append(r.data, data...)

	return len(r.data)
}

// WriteAt overwrites the region in place with data starting at offset. It
// does not change the region's length; unlike a splice, chunks that did not
// alias the overwritten range remain valid.
func (r *Region) WriteAt(offset uint64, data []byte) error {
	if offset > uint64(len(r.data)) || uint64(len(data)) > uint64(len(r.data))-offset {
		return elferrors.OutOfRange(offset, uint64(len(data)), uint64(len(r.data)))
	}

	copy(r.data[offset:offset+uint64(len(data))], data)

	return nil
}

// SpliceInsert inserts data at offset, shifting all trailing bytes forward.
// It returns the new region length. Any chunk whose range crossed or
// followed offset is semantically stale after this call.
func (r *Region) SpliceInsert(offset int, data []byte) (int, error) {
	if offset < 0 || offset > len(r.data) {
		return 0, elferrors.OutOfRange(uint64(offset), uint64(len(data)), uint64(len(r.data)))
	}

	out := make([]byte, 0, len(r.data)+len(data))
	out = append(out, r.data[:offset]...)
	out = append(out, data...)
	out = append(out, r.data[offset:]...)
	r.data = out

	return len(r.data), nil
}

// SpliceRemove removes the [offset, offset+length) byte range, shifting
// trailing bytes backward. It returns the new region length. Bytes outside
// the removed range are preserved exactly.
func (r *Region) SpliceRemove(offset, length int) (int, error) {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return 0, elferrors.OutOfRange(uint64(offset), uint64(length), uint64(len(r.data)))
	}

	out := make([]byte, 0, len(r.data)-length)
	out = append(out, r.data[:offset]...)
	out = append(out, r.data[offset+length:]...)
	r.data = out

	return len(r.data), nil
}
