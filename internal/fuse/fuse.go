//go:build linux
// +build linux

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fuse

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/sscafiti/atrsfs/internal/sfs"
)

// dirNode is one directory of the tree materialized from a Reader.Walk,
// keyed by path component rather than the flat offset/size map the
// original recovery projection used: an SFS volume is a real hierarchy,
// so the FUSE projection needs to be one too.
type dirNode struct {
	dirs  map[string]*dirNode
	files map[string]sfs.DirEntry
}

func newDirNode() *dirNode {
	return &dirNode{dirs: map[string]*dirNode{}, files: map[string]sfs.DirEntry{}}
}

// SfsFS is a read-only FUSE projection of an SFS volume's directory tree.
type SfsFS struct {
	reader *sfs.Reader

	mtx  sync.RWMutex
	root *dirNode
}

// NewSfsFS walks reader's whole directory tree once and builds the static
// projection FUSE will serve.
func NewSfsFS(reader *sfs.Reader) (*SfsFS, error) {
	root := newDirNode()
	err := reader.Walk(func(path string, e sfs.DirEntry) error {
		parts := strings.Split(path, "/")
		dir := root
		for _, p := range parts[:len(parts)-1] {
			next, ok := dir.dirs[p]
			if !ok {
				next = newDirNode()
				dir.dirs[p] = next
			}
			dir = next
		}
		leaf := parts[len(parts)-1]
		if e.IsDir() {
			if _, ok := dir.dirs[leaf]; !ok {
				dir.dirs[leaf] = newDirNode()
			}
		} else {
			dir.files[leaf] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SfsFS{reader: reader, root: root}, nil
}

func (sf *SfsFS) Root() (fs.Node, error) {
	return &Dir{fs: sf, node: sf.root}, nil
}

// Dir implements fs.Node and fs.HandleReadDirAller for one directory.
type Dir struct {
	fs   *SfsFS
	node *dirNode
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	if sub, ok := d.node.dirs[name]; ok {
		return &Dir{fs: d.fs, node: sub}, nil
	}
	if e, ok := d.node.files[name]; ok {
		return &File{fs: d.fs, entry: e}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	entries := make([]fuse.Dirent, 0, len(d.node.dirs)+len(d.node.files))
	for name := range d.node.dirs {
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_Dir})
	}
	for name := range d.node.files {
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_File})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for i := range entries {
		entries[i].Inode = uint64(i + 1)
	}
	return entries, nil
}

// File implements fs.Node and fs.HandleReader for one regular file. Reads
// re-stream the file's whole sector-map chain each time; acceptable given
// the builder's 16 MiB per-file cap (§5) and that mounts are a read-mostly,
// low-concurrency convenience, not a hot path.
type File struct {
	fs    *SfsFS
	entry sfs.DirEntry
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.entry.Size)
	a.Mtime = f.entry.ModTime()
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data := f.fs.reader.ReadFile(f.entry)

	offset := req.Offset
	size := int64(req.Size)
	if offset >= int64(len(data)) {
		resp.Data = []byte{}
		return nil
	}
	end := offset + size
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	resp.Data = data[offset:end]
	return nil
}
