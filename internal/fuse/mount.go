//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/sscafiti/atrsfs/internal/sfs"
)

func Mount(mountpoint string, reader *sfs.Reader) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
