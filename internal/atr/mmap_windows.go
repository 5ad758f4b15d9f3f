//go:build windows
// +build windows

package atr

import (
	"errors"
	"io"
)

// mmapLoad has no Windows implementation: internal/mmap is built on
// syscall.Mmap, which the Windows syscall package doesn't expose. Load
// always falls back to its fs.Open+io.ReadAll path on this platform.
func mmapLoad(path string) ([]byte, io.Closer, error) {
	return nil, nil, errors.New("atr: mmap not supported on windows")
}
