package atr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sscafiti/atrsfs/internal/sfs"
	"github.com/stretchr/testify/require"
)

// The ATR size law from §4.7: total payload bytes are 128*3 for the fixed
// first three sectors plus ssec*(nsec-3) for the rest, when nsec > 3.
func TestPayloadSizeLaw(t *testing.T) {
	cases := []struct {
		ssec, nsec int
		want       int
	}{
		{128, 720, 128 * 720},           // uniform 128-byte geometry: no adjustment needed
		{256, 720, 128*3 + 256*(720-3)}, // single-density-compatible 256-byte disk
		{128, 3, 128 * 3},               // exactly the fixed prefix, no tail
		{256, 2, 128 * 2},               // fewer than 3 sectors: all 128-byte
	}
	for _, c := range cases {
		require.Equal(t, c.want, payloadSize(c.ssec, c.nsec))
	}
}

// Writing an ATR file and loading it back must reproduce the same uniform
// sector array the volume was built with.
func TestWriteVolumeThenLoadRoundTrip(t *testing.T) {
	v, err := sfs.Build(sfs.BuildOptions{
		Geometry:   sfs.Geometry{SectorSize: 256, SectorCount: 40},
		VolumeName: "ROUNDTRIP",
		Root: &sfs.Node{
			Name: "", IsDir: true,
			Children: []*sfs.Node{
				{Name: "A.TXT", Content: []byte("hello from atr"), Size: 14},
			},
		},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "image.atr")
	require.NoError(t, WriteVolume(path, v))

	img, err := Load(path)
	require.NoError(t, err)
	ssec, _ := v.Geometry()
	require.Equal(t, ssec, img.SectorSize)
	require.Equal(t, v.Bytes(), img.Data)
}

// The header magic, paragraph count and sector size must round-trip
// exactly through Decode.
func TestDecodeHeaderFields(t *testing.T) {
	raw := make([]byte, HeaderSize+128*3+256*7)
	raw[0] = magicByte0
	raw[1] = magicByte1
	bytesTotal := payloadSize(256, 10)
	paragraphs := bytesTotal / 16
	raw[2] = byte(paragraphs)
	raw[3] = byte(paragraphs >> 8)
	raw[4] = byte(256)
	raw[5] = byte(256 >> 8)
	raw[6] = byte(paragraphs >> 16)

	img, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 256, img.SectorSize)
	require.Len(t, img.Data, 256*10)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := make([]byte, HeaderSize+16)
	_, err := Decode(raw)
	require.ErrorIs(t, err, ErrBadHeader)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(os.TempDir(), "does-not-exist.atr"))
	require.Error(t, err)
}
