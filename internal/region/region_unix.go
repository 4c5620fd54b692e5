//go:build unix
// +build unix

package region

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps path's contents read-only into memory and returns a private
// copy, since the backing mmap must outlive the Region independent of the
// file descriptor and is immediately mutated by splice operations.
func mapFile(path string, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(mapped)

	data := make([]byte, len(mapped))
	copy(data, mapped)

	return data, nil
}
