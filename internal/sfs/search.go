package sfs

import "time"

// ExactSizeOptions configures a search for the smallest sufficient
// geometry (§4.4's optional "exact-size search").
type ExactSizeOptions struct {
	BootPage   byte
	VolumeName string
	Root       *Node
	BuildTime  time.Time
	MinBytes   int64 // hard lower bound on total image size, per §9
}

// BuildExactSize packs an image into the smallest sufficient sector count,
// following the reference strategy from §4.4: try (128, 65535) first; on
// success, shrink the sector count one at a time (starting from
// 65535-free_sectors) for as long as the build still succeeds. Fall back to
// (256, 65535) if 128-byte sectors can't hold the tree at all.
//
// §9 flags the reference shrink loop's early exit as ambiguous enough to
// undershoot MinBytes; this implementation treats MinBytes as a hard floor
// and never returns a geometry whose byte capacity falls below it.
func BuildExactSize(opts ExactSizeOptions) (*Volume, error) {
	for _, secSize := range []int{128, 256} {
		v, err := tryShrink(secSize, opts)
		if err == nil {
			return v, nil
		}
	}
	return nil, ErrOutOfSpace
}

func tryShrink(secSize int, opts ExactSizeOptions) (*Volume, error) {
	const maxSec = 65535

	if int64(secSize)*maxSec < opts.MinBytes {
		return nil, ErrOutOfSpace
	}

	best, err := buildAt(secSize, maxSec, opts)
	if err != nil {
		return nil, err
	}

	nsec := maxSec - best.bitmap.FreeCount()
	if floor := int((opts.MinBytes + int64(secSize) - 1) / int64(secSize)); floor > nsec {
		nsec = floor
	}
	for nsec >= MinSectorCount {
		geoBytes := int64(secSize) * int64(nsec)
		if geoBytes < opts.MinBytes {
			break
		}
		candidate, err := buildAt(secSize, nsec, opts)
		if err != nil {
			break
		}
		best = candidate
		nsec--
	}
	return best, nil
}

func buildAt(secSize, secCount int, opts ExactSizeOptions) (*Volume, error) {
	return Build(BuildOptions{
		Geometry:   Geometry{SectorSize: secSize, SectorCount: secCount},
		BootPage:   opts.BootPage,
		VolumeName: opts.VolumeName,
		Root:       opts.Root,
		BuildTime:  opts.BuildTime,
	})
}
