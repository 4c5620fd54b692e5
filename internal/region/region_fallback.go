//go:build !unix && !windows
// +build !unix,!windows

package region

import "errors"

// mapFile has no memory-mapped implementation on this platform; FromFile
// falls back to a plain read.
func mapFile(path string, size int64) ([]byte, error) {
	return nil, errors.New("region: memory mapping not supported on this platform")
}
