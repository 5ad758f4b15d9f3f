package sfs

import (
	"fmt"
	"time"

	"github.com/sscafiti/atrsfs/internal/logger"
)

// BuildOptions configures a single Build attempt (§4.4).
type BuildOptions struct {
	Geometry   Geometry
	BootPage   byte // entry page for the boot loader; 0 if no boot file
	VolumeName string
	Root       *Node // the root directory's Children hold the top-level tree
	BuildTime  time.Time
	Log        *logger.Logger // optional; nil disables logging
}

func (o *BuildOptions) log() *logger.Logger {
	if o.Log == nil {
		return logger.Discard()
	}
	return o.Log
}

// Build lays out the whole input tree over the given geometry and returns
// the finished, self-consistent Volume, or ErrOutOfSpace if the geometry
// cannot hold it (§4.4). On any failure the caller discards the attempt —
// there is no partial commit or rollback API (§5).
func Build(opts BuildOptions) (*Volume, error) {
	log := opts.log()

	if opts.Geometry.SectorCount < MinSectorCount {
		return nil, fmt.Errorf("%w: sector count %d below minimum %d", ErrBadGeometry, opts.Geometry.SectorCount, MinSectorCount)
	}

	bootNode, err := findBootNode(opts.Root)
	if err != nil {
		return nil, err
	}
	if err := checkFileSizes(opts.Root); err != nil {
		return nil, err
	}

	v, err := newVolume(opts.Geometry)
	if err != nil {
		return nil, err
	}

	// Sectors 0 (terminator sentinel) and 1 (superblock) are always fixed.
	// When a boot file is present, sectors 2 and 3 are fixed too, so that
	// the boot loader's leading 384 bytes across sectors 1-3 can never be
	// clobbered by a later bitmap or sector-map allocation — the builder's
	// chosen resolution of the "aliasing" question in §4.4 step 6 / S3.
	reserveCount := 2
	if bootNode != nil {
		reserveCount = 4
	}
	if err := v.bitmap.Reserve(reserveCount); err != nil {
		return nil, err
	}

	bitmapSectorCount := SectorsNeeded(opts.Geometry.SectorCount, opts.Geometry.SectorSize)
	bitmapSectors := make([]int, bitmapSectorCount)
	for i := range bitmapSectors {
		s, err := v.bitmap.Alloc()
		if err != nil {
			log.Warnf("out of space allocating bitmap sector %d/%d", i+1, bitmapSectorCount)
			return nil, ErrOutOfSpace
		}
		bitmapSectors[i] = s
	}

	if bootNode != nil {
		writeBootPrefix(v, bootNode.Content, opts.BootPage)
	}

	volumeName := SFSName(opts.VolumeName)
	rootMap, _, err := buildDirectory(v, opts.Root, volumeName, true, opts.BuildTime)
	if err != nil {
		log.Warnf("build failed: %s", err)
		return nil, err
	}

	writeBitmap(v, bitmapSectors)

	writeSuperblock(v, Superblock{
		RootMap:      uint16(rootMap),
		SectorCount:  uint16(opts.Geometry.SectorCount),
		FreeCount:    uint16(v.bitmap.FreeCount()),
		BitmapSector: uint16(bitmapSectors[0]),
		VolumeName:   sfsVolumeNameBytes(volumeName),
		SectorSize:   opts.Geometry.SectorSize,
	})

	return v, nil
}

func sfsVolumeNameBytes(name [11]byte) [8]byte {
	var out [8]byte
	copy(out[:], name[0:8])
	return out
}

func writeBitmap(v *Volume, bitmapSectors []int) {
	raw := v.bitmap.Serialize()
	off := 0
	for _, s := range bitmapSectors {
		buf := v.sectorBytes(s)
		n := v.secSize
		if off+n > len(raw) {
			n = len(raw) - off
		}
		if n > 0 {
			copy(buf[:n], raw[off:off+n])
		}
		off += n
	}
}

// writeBootPrefix copies the boot file's leading 384 bytes (zero-padded)
// into the low 128-byte prefix of sectors 1, 2 and 3, per the ATR
// bootloader convention (§4.4 step 6, testable property #6), then
// relocates the boot code's entry point by patching the init-address high
// byte (standard Atari boot header offset 5, right after the 4-byte boot
// flag / sector count / load address fields) to the configured boot page.
// It runs before writeSuperblock so the superblock's own fields still win
// where they overlap sector 1.
func writeBootPrefix(v *Volume, content []byte, bootPage byte) {
	buf := make([]byte, 3*128)
	copy(buf, content)
	for i := 0; i < 3; i++ {
		dst := v.sectorBytes(i + 1)
		copy(dst[:128], buf[i*128:(i+1)*128])
	}
	if bootPage != 0 {
		v.sectorBytes(1)[5] = bootPage
	}
}

func findBootNode(root *Node) (*Node, error) {
	var found *Node
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, c := range n.Children {
			if c.Boot {
				if found != nil {
					return fmt.Errorf("sfs: more than one boot file specified")
				}
				found = c
			}
			if c.IsDir {
				if err := walk(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return found, nil
}

func checkFileSizes(root *Node) error {
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, c := range n.Children {
			if c.IsDir {
				if err := walk(c); err != nil {
					return err
				}
				continue
			}
			if c.Size > MaxInputFile {
				return fmt.Errorf("%w: %q is %d bytes", ErrFileTooLarge, c.Name, c.Size)
			}
		}
		return nil
	}
	return walk(root)
}
