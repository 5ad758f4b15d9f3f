package sfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The exact-size search must still respect a caller-supplied MinBytes floor
// even though shrinking would otherwise land on a smaller geometry.
func TestBuildExactSizeRespectsMinBytes(t *testing.T) {
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "HELLO.TXT", ModTime: testBuildTime(), Content: []byte("hello"), Size: 5},
		},
	}

	const minBytes = 92160 // a single-density 720-sector disk
	v, err := BuildExactSize(ExactSizeOptions{
		Root:      root,
		BuildTime: testBuildTime(),
		MinBytes:  minBytes,
	})
	require.NoError(t, err)

	ssec, nsec := v.Geometry()
	require.GreaterOrEqual(t, int64(ssec)*int64(nsec), int64(minBytes))
}

// Without a MinBytes floor, the search should shrink well below a full
// 65535-sector image for a tiny input tree.
func TestBuildExactSizeShrinksSmallTree(t *testing.T) {
	root := &Node{
		Name: "", IsDir: true,
		Children: []*Node{
			{Name: "HELLO.TXT", ModTime: testBuildTime(), Content: []byte("hello"), Size: 5},
		},
	}
	v, err := BuildExactSize(ExactSizeOptions{Root: root, BuildTime: testBuildTime()})
	require.NoError(t, err)
	_, nsec := v.Geometry()
	require.Less(t, nsec, 65535, "exact-size search did not shrink")

	r := openVolume(t, v)
	found := false
	err = r.Walk(func(path string, e DirEntry) error {
		if path == "HELLO.TXT" {
			found = true
		}
		return nil
	})
	require.NoError(t, err)
	require.True(t, found, "HELLO.TXT not found after exact-size build")
}
