package sfs

import (
	"bytes"
	"testing"

	"github.com/sscafiti/atrsfs/internal/logger"
	"github.com/stretchr/testify/require"
)

// ReadMap must zero-fill a sparse hole (a zero data-sector slot) rather
// than stopping or erroring.
func TestReadMapSparseHole(t *testing.T) {
	v, err := newVolume(Geometry{SectorSize: 128, SectorCount: 64})
	require.NoError(t, err)
	require.NoError(t, v.bitmap.Reserve(2))

	payload := bytes.Repeat([]byte{0x7E}, 128*3)
	mapSec, dataSectors, err := v.writeSectorMap(payload)
	require.NoError(t, err)

	// Punch a hole: zero out the middle data sector's slot in the map.
	mapBuf := v.sectorBytes(mapSec)
	mapBuf[4+2] = 0
	mapBuf[4+3] = 0
	_ = dataSectors

	img := &Image{Data: v.data, SectorSize: v.secSize}
	r := &Reader{img: img, log: logger.Discard()}

	out := r.ReadMap(mapSec, len(payload))
	require.Len(t, out, len(payload))
	require.True(t, bytes.Equal(out[0:128], payload[0:128]), "first sector mismatch")
	require.True(t, bytes.Equal(out[128:256], make([]byte, 128)), "hole sector not zero-filled: %x", out[128:256])
	require.True(t, bytes.Equal(out[256:384], payload[256:384]), "third sector mismatch")
}

// Reading past the end of a map chain (next == 0 before size is reached)
// must return a short slice and only warn, never panic. The chain is one
// 128-byte map sector with 62 slots; the unused slots read as holes, so the
// chain covers 62*128 bytes.
func TestReadMapShortChain(t *testing.T) {
	v, err := newVolume(Geometry{SectorSize: 128, SectorCount: 16})
	require.NoError(t, err)
	require.NoError(t, v.bitmap.Reserve(2))
	mapSec, _, err := v.writeSectorMap(bytes.Repeat([]byte{1}, 128))
	require.NoError(t, err)

	img := &Image{Data: v.data, SectorSize: v.secSize}
	r := &Reader{img: img, log: logger.Discard()}

	out := r.ReadMap(mapSec, 8192) // ask for more than the chain has
	require.Len(t, out, 62*128)
}
