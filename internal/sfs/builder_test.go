package sfs

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testBuildTime() time.Time {
	return time.Date(2026, time.March, 5, 12, 30, 0, 0, time.UTC)
}

func mustBuild(t *testing.T, opts BuildOptions) *Volume {
	t.Helper()
	v, err := Build(opts)
	require.NoError(t, err)
	return v
}

func openVolume(t *testing.T, v *Volume) *Reader {
	t.Helper()
	ssec, _ := v.Geometry()
	img := &Image{Data: v.Bytes(), SectorSize: ssec}
	r, err := Open(img, nil)
	require.NoError(t, err)
	return r
}

func sampleTree() *Node {
	return &Node{
		Name:  "",
		IsDir: true,
		Children: []*Node{
			{Name: "HELLO.TXT", ModTime: testBuildTime(), Content: []byte("hello world"), Size: 11},
			{
				Name: "SUBDIR", IsDir: true, ModTime: testBuildTime(),
				Children: []*Node{
					{Name: "NESTED.DAT", ModTime: testBuildTime(), Content: bytes.Repeat([]byte{0x42}, 300), Size: 300},
				},
			},
			{Name: "EMPTY.DAT", ModTime: testBuildTime(), Content: nil, Size: 0},
		},
	}
}

// A build then a full walk must recover every file's name, size and bytes.
func TestBuildThenWalkRoundTrip(t *testing.T) {
	v := mustBuild(t, BuildOptions{
		Geometry:   Geometry{SectorSize: 128, SectorCount: 720},
		VolumeName: "TESTVOL",
		Root:       sampleTree(),
		BuildTime:  testBuildTime(),
	})
	r := openVolume(t, v)

	want := map[string][]byte{
		"HELLO.TXT":         []byte("hello world"),
		"SUBDIR/NESTED.DAT": bytes.Repeat([]byte{0x42}, 300),
		"EMPTY.DAT":         {},
	}
	seen := map[string]bool{}

	err := r.Walk(func(path string, e DirEntry) error {
		if e.IsDir() {
			require.Equal(t, "SUBDIR", path)
			return nil
		}
		wantContent, ok := want[path]
		require.True(t, ok, "unexpected file %q", path)
		seen[path] = true
		require.Equal(t, len(wantContent), int(e.Size), "%s size", path)
		got := r.ReadFile(e)
		require.Equal(t, wantContent, got, "%s content", path)
		return nil
	})
	require.NoError(t, err)
	for path := range want {
		require.True(t, seen[path], "never visited %q", path)
	}
}

// Building the same tree twice must allocate identical sector numbers: the
// lowest-free-sector policy makes layout a pure function of the input tree.
func TestBuildIsDeterministic(t *testing.T) {
	opts := BuildOptions{
		Geometry:   Geometry{SectorSize: 128, SectorCount: 720},
		VolumeName: "TESTVOL",
		Root:       sampleTree(),
		BuildTime:  testBuildTime(),
	}
	v1 := mustBuild(t, opts)
	opts.Root = sampleTree() // fresh tree, same shape and content
	v2 := mustBuild(t, opts)

	require.Equal(t, v1.Bytes(), v2.Bytes(), "two builds of the same input tree produced different images")
}

// Directory emission preserves insertion order rather than sorting by name.
func TestDirectoryPreservesInsertionOrder(t *testing.T) {
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "ZEBRA.TXT", ModTime: testBuildTime(), Content: []byte("z"), Size: 1},
			{Name: "APPLE.TXT", ModTime: testBuildTime(), Content: []byte("a"), Size: 1},
			{Name: "MANGO.TXT", ModTime: testBuildTime(), Content: []byte("m"), Size: 1},
		},
	}
	v := mustBuild(t, BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: 720},
		Root:      root,
		BuildTime: testBuildTime(),
	})
	r := openVolume(t, v)

	var order []string
	err := r.Walk(func(path string, e DirEntry) error {
		order = append(order, path)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ZEBRA.TXT", "APPLE.TXT", "MANGO.TXT"}, order)
}

// A directory's reported header size must equal the byte length of its own
// entry stream: (1 + number of children) * DirEntrySize.
func TestDirectorySizeLaw(t *testing.T) {
	root := sampleTree()
	v := mustBuild(t, BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: 720},
		Root:      root,
		BuildTime: testBuildTime(),
	})
	r := openVolume(t, v)

	header, children, err := r.ReadDir(int(r.Superblock().RootMap))
	require.NoError(t, err)
	require.Equal(t, uint32(DirEntrySize*(1+len(children))), header.Size)
}

// Two names that fold to the same 8.3 form in one directory must fail the
// build rather than silently shadow one entry with the other.
func TestDuplicateNameRejected(t *testing.T) {
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "FILE.TXT", ModTime: testBuildTime(), Content: []byte("a"), Size: 1},
			{Name: "file.txt", ModTime: testBuildTime(), Content: []byte("b"), Size: 1},
		},
	}
	_, err := Build(BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: 720},
		Root:      root,
		BuildTime: testBuildTime(),
	})
	require.Error(t, err)
}

// Sector 0 is never allocated, and the bitmap's free count in the built
// superblock must match what the bitmap itself reports right before it is
// serialized.
func TestBitmapNeverHandsOutSectorZero(t *testing.T) {
	v := mustBuild(t, BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: 720},
		Root:      sampleTree(),
		BuildTime: testBuildTime(),
	})
	r := openVolume(t, v)
	sb := r.Superblock()
	require.NotZero(t, sb.RootMap)
	require.NotZero(t, sb.BitmapSector)
	require.Equal(t, uint16(v.bitmap.FreeCount()), sb.FreeCount)
}

// A boot file's leading bytes land in the low 128-byte prefix of sectors
// 1-3, and a nonzero boot page patches sector 1 offset 5. Sector 1 also
// carries the superblock fields (offset 7 onward), so only its first five
// bytes are compared there; sector 2 holds the next 128 bytes unchanged.
func TestBootPrefixAndPageByte(t *testing.T) {
	bootCode := bytes.Repeat([]byte{0xAA}, 300)
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "BOOT.COM", Boot: true, ModTime: testBuildTime(), Content: bootCode, Size: int64(len(bootCode))},
		},
	}
	v := mustBuild(t, BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: 720},
		BootPage:  0x50,
		Root:      root,
		BuildTime: testBuildTime(),
	})

	ssec, _ := v.Geometry()
	data := v.Bytes()
	sector1 := data[0:ssec]
	require.Equal(t, byte(0x50), sector1[5])
	require.True(t, bytes.Equal(sector1[:5], bootCode[:5]), "sector 1 boot prefix mismatch")
	require.True(t, bytes.Equal(data[ssec:ssec+128], bootCode[128:256]), "sector 2 boot prefix mismatch")
}

// Building over a geometry too small for the input must fail with
// ErrOutOfSpace rather than silently truncating or corrupting the image.
func TestBuildOutOfSpace(t *testing.T) {
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "BIG.DAT", ModTime: testBuildTime(), Content: bytes.Repeat([]byte{1}, 4096), Size: 4096},
		},
	}
	_, err := Build(BuildOptions{
		Geometry:  Geometry{SectorSize: 128, SectorCount: MinSectorCount},
		Root:      root,
		BuildTime: testBuildTime(),
	})
	require.Error(t, err)
}
