package sfs

import (
	"encoding/binary"
)

// Volume is the in-memory sector array being assembled by Build, plus the
// bitmap tracking which sectors are spoken for. File offsets within data
// are always sec_size*(n-1): the ATR container's "first three sectors are
// always 128 bytes" rule is a container-layer concern (package atr), not a
// property of this uniform array (§3, §9).
type Volume struct {
	data     []byte
	secSize  int
	secCount int
	bitmap   *Bitmap
}

func newVolume(geo Geometry) (*Volume, error) {
	if geo.SectorCount < MinSectorCount {
		return nil, ErrBadGeometry
	}
	if geo.SectorSize != SectorSize128 && geo.SectorSize != SectorSize256 {
		return nil, ErrBadGeometry
	}
	return &Volume{
		data:     make([]byte, geo.SectorSize*geo.SectorCount),
		secSize:  geo.SectorSize,
		secCount: geo.SectorCount,
		bitmap:   NewBitmap(geo.SectorCount),
	}, nil
}

// Geometry returns the sector size and sector count this volume was built
// with, for callers (package atr) that need to serialize it.
func (v *Volume) Geometry() (secSize, secCount int) {
	return v.secSize, v.secCount
}

// Bytes exposes the volume's backing sector array. The returned slice
// aliases the volume's storage and must be treated as read-only.
func (v *Volume) Bytes() []byte {
	return v.data
}

func (v *Volume) sectorOffset(n int) int {
	return v.secSize * (n - 1)
}

func (v *Volume) sectorBytes(n int) []byte {
	off := v.sectorOffset(n)
	return v.data[off : off+v.secSize]
}

// slotsPerMap is the number of data-sector slots a single map sector can
// hold: (sec_size-4)/2, per §3.
func (v *Volume) slotsPerMap() int {
	return (v.secSize - 4) / 2
}

// writeSectorMap allocates and emits the linked chain of map sectors and
// data sectors needed to hold payload, per §4.2. It returns the first map
// sector (the chain head) and the data sectors in chain order, so a caller
// composing a self-referential header entry (a directory pointing at its
// own map) can patch that field in after the fact.
func (v *Volume) writeSectorMap(payload []byte) (firstMap int, dataSectors []int, err error) {
	slots := v.slotsPerMap()

	dataCount := (len(payload) + v.secSize - 1) / v.secSize
	mapCount := (dataCount + slots - 1) / slots
	if mapCount == 0 {
		// Zero-length payload still gets exactly one, empty map sector
		// (§4.2, §9 open question: reference always allocates a map).
		mapCount = 1
	}

	mapSectors := make([]int, mapCount)
	for i := range mapSectors {
		s, err := v.bitmap.Alloc()
		if err != nil {
			return 0, nil, ErrOutOfSpace
		}
		mapSectors[i] = s
	}

	dataSectors = make([]int, dataCount)
	for i := range dataSectors {
		s, err := v.bitmap.Alloc()
		if err != nil {
			return 0, nil, ErrOutOfSpace
		}
		dataSectors[i] = s
	}

	for i, mapSec := range mapSectors {
		buf := v.sectorBytes(mapSec)
		var next, prev uint16
		if i+1 < mapCount {
			next = uint16(mapSectors[i+1])
		}
		if i > 0 {
			prev = uint16(mapSectors[i-1])
		}
		binary.LittleEndian.PutUint16(buf[0:2], next)
		binary.LittleEndian.PutUint16(buf[2:4], prev)

		start := i * slots
		end := start + slots
		if end > dataCount {
			end = dataCount
		}
		for j := start; j < end; j++ {
			slotOff := 4 + (j-start)*2
			binary.LittleEndian.PutUint16(buf[slotOff:slotOff+2], uint16(dataSectors[j]))
		}
	}

	remaining := len(payload)
	for i, dataSec := range dataSectors {
		buf := v.sectorBytes(dataSec)
		n := v.secSize
		if remaining < n {
			n = remaining
		}
		copy(buf[:n], payload[i*v.secSize:i*v.secSize+n])
		// Tail of the final sector beyond n stays zero: the array starts
		// zeroed and is never reused, so no explicit padding write is
		// needed (§4.2's "zero-padding the tail" is automatic here).
		remaining -= n
	}

	return mapSectors[0], dataSectors, nil
}

// patchUint16 overwrites two bytes at the given offset within data sector
// dataSec. Used to fix up a directory's self-referential header map field
// after its chain has been allocated (see buildDirectory).
func (v *Volume) patchUint16(dataSec int, offset int, val uint16) {
	buf := v.sectorBytes(dataSec)
	binary.LittleEndian.PutUint16(buf[offset:offset+2], val)
}
