package sfs

import "time"

// buildDirectory emits one directory's entry stream (§4.3): it recurses
// into child subdirectories first, so each child's map sector is already
// known when its entry is composed, then writes its own header entry (the
// self-descriptor whose map field points back at the chain this function is
// about to allocate) followed by one entry per child, in input order.
//
// Grounded on the squashfs Directory.Flush recursion shape in the example
// pack: accumulate entries into a buffer, recurse before flushing, then
// patch the one field (here: the header's own map sector) that can only be
// known once the chain exists — the deferred-patch technique the squashfs
// writer uses for parent inode numbers.
func buildDirectory(v *Volume, node *Node, headerName [11]byte, isRoot bool, buildTime time.Time) (mapSector int, totalSize int, err error) {
	seen := make(map[string]struct{}, len(node.Children))
	childMaps := make([]int, len(node.Children))
	childSizes := make([]int, len(node.Children))

	for i, child := range node.Children {
		key := foldName(child.Name)
		if _, dup := seen[key]; dup {
			return 0, 0, ErrDuplicateName
		}
		seen[key] = struct{}{}

		if child.IsDir {
			cm, cs, err := buildDirectory(v, child, SFSName(child.Name), false, buildTime)
			if err != nil {
				return 0, 0, err
			}
			childMaps[i] = cm
			childSizes[i] = cs
		}
	}

	entryCount := 1 + len(node.Children)
	payload := make([]byte, DirEntrySize*entryCount)

	// Header entry: in-use + directory, map patched in below once known.
	headerSize := DirEntrySize * entryCount
	header := DirEntry{
		Flags: FlagInUse | FlagDirectory,
		Size:  uint32(headerSize),
		Name:  headerName,
	}
	header.Day, header.Month, header.Year, header.Hour, header.Min, header.Sec = dateTimeFields(buildTime)
	header.Encode(payload[0:DirEntrySize])

	for i, child := range node.Children {
		flags := byte(FlagInUse) | child.Attr
		var mapSec uint16
		var size uint32
		if child.IsDir {
			flags |= FlagDirectory
			mapSec = uint16(childMaps[i])
			size = uint32(childSizes[i])
		} else {
			fm, err := buildFile(v, child)
			if err != nil {
				return 0, 0, err
			}
			mapSec = uint16(fm)
			size = uint32(child.Size)
		}

		e := DirEntry{
			Flags: flags,
			Map:   mapSec,
			Size:  size,
			Name:  SFSName(child.Name),
		}
		e.Day, e.Month, e.Year, e.Hour, e.Min, e.Sec = dateTimeFields(child.ModTime)
		e.Encode(payload[(i+1)*DirEntrySize : (i+2)*DirEntrySize])
	}

	first, dataSectors, err := v.writeSectorMap(payload)
	if err != nil {
		return 0, 0, err
	}
	// Patch the header's self-referential map field now that it's known.
	// The header entry is always the first DirEntrySize bytes of the
	// payload, which always lives in the chain's first data sector; its
	// map field is at byte offset 1 (after the one-byte flags field).
	v.patchUint16(dataSectors[0], 1, uint16(first))

	return first, headerSize, nil
}

// buildFile allocates a sector map for a regular file's content and
// returns its first map sector (§4.2).
func buildFile(v *Volume, node *Node) (int, error) {
	payload := make([]byte, node.Size)
	copy(payload, node.Content)
	first, _, err := v.writeSectorMap(payload)
	return first, err
}

// foldName case-folds and trims a name the way §3 invariant 4 requires for
// duplicate detection within one directory.
func foldName(name string) string {
	for len(name) > 0 && name[len(name)-1] == ' ' {
		name = name[:len(name)-1]
	}
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
