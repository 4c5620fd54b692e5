//go:build windows
// +build windows

package region

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapFile maps path's contents into memory via a Windows file mapping
// object and returns a private copy; the view and mapping handle are
// closed before returning since the Region owns an independent buffer.
func mapFile(path string, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}
	defer windows.UnmapViewOfFile(addr)

	view := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	data := make([]byte, len(view))
	copy(data, view)

	return data, nil
}
