//go:build !windows
// +build !windows

package atr

import (
	"io"

	"github.com/sscafiti/atrsfs/internal/mmap"
)

// mmapLoad maps path read-only via internal/mmap rather than reading it
// into a freshly allocated slice. Decode copies every byte it keeps into
// its own array before returning, so the mapping can be unmapped the
// moment Decode is done with it.
func mmapLoad(path string) ([]byte, io.Closer, error) {
	m, err := mmap.NewMmapFile(path)
	if err != nil {
		return nil, nil, err
	}
	return m.Data, m, nil
}
