// Package hostfs is the thin external collaborator that turns a host
// filesystem path into the sfs.Node tree the builder consumes: walking
// directories, reading file contents fully into memory, and normalizing
// host names to 8.3 form. None of this is part of the SFS format itself
// (it has no on-disk representation to be byte-compatible with), so it
// stays a straightforward os/filepath walk rather than following any
// particular teacher pattern.
package hostfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sscafiti/atrsfs/internal/sfs"
)

// BuildTree reads path (a file or a directory) from the host filesystem
// and returns the sfs.Node tree rooted at it, normalizing every name to
// 8.3 form. Regular files are read fully into memory, per §5's "no
// streaming builder" I/O model.
func BuildTree(path string) (*sfs.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("hostfs: stat %q: %w", path, err)
	}
	return buildNode(path, info)
}

func buildNode(path string, info os.FileInfo) (*sfs.Node, error) {
	node := &sfs.Node{
		Name:    Normalize83(info.Name()),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("hostfs: read %q: %w", path, err)
		}
		if int64(len(data)) > sfs.MaxInputFile {
			return nil, fmt.Errorf("%w: %q is %d bytes", sfs.ErrFileTooLarge, path, len(data))
		}
		node.Content = data
		node.Size = int64(len(data))
		return node, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("hostfs: readdir %q: %w", path, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		childInfo, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("hostfs: stat %q: %w", filepath.Join(path, e.Name()), err)
		}
		child, err := buildNode(filepath.Join(path, e.Name()), childInfo)
		if err != nil {
			return nil, err
		}

		key := strings.ToUpper(child.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q collides after 8.3 normalization in %q", sfs.ErrDuplicateName, child.Name, path)
		}
		seen[key] = struct{}{}

		node.Children = append(node.Children, child)
	}
	return node, nil
}

// Normalize83 maps a host filename to a valid, uppercase SFS 8.3 name:
// strips characters the directory entry encoder can't represent, splits
// on the last dot, and truncates to 8 characters of base name and 3 of
// extension.
func Normalize83(name string) string {
	base, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		base, ext = name[:idx], name[idx+1:]
	}

	base = sanitize(base)
	ext = sanitize(ext)

	if len(base) > 8 {
		base = base[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	if base == "" {
		base = "_"
	}
	if ext == "" {
		return strings.ToUpper(base)
	}
	return strings.ToUpper(base + "." + ext)
}

func sanitize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		}
	}
	return string(out)
}
