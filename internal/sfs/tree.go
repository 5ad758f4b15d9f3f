package sfs

import "time"

// Node is one entry of the input file tree handed to Build: a file or a
// directory, with the metadata §3's "file-list entry" calls for. Host
// traversal and 8.3 name normalization are external collaborators (§1); a
// Node already carries a normalized on-disk name.
type Node struct {
	// Name is the dotted 8.3 host-visible name (e.g. "hello.txt"); encoded
	// on disk via SFSName.
	Name string

	// IsDir marks a subdirectory; Children is only meaningful when true.
	IsDir bool

	// Boot marks the single file (there can be at most one) whose leading
	// bytes populate the ATR boot sectors (§4.4 step 6).
	Boot bool

	// Attr carries the hidden/protected/archived bits (FlagHidden,
	// FlagProtected, FlagArchived); the in-use and directory bits are
	// computed by the builder.
	Attr byte

	// ModTime is either the host file's mtime or, for directories created
	// purely to hold a listing, the build timestamp.
	ModTime time.Time

	// Content holds a file's bytes, read fully into memory before layout
	// per §5 (no streaming builder: sector assignment isn't known until
	// allocation). Nil/empty for directories and for zero-length files.
	Content []byte

	// Size is the file's byte length. For a regular file it must equal
	// len(Content); kept as a separate field because directory entries
	// also reuse Size for a directory's total byte length (§3).
	Size int64

	// Children holds this directory's entries in the exact order they
	// should appear on disk (§4.3: insertion order, never sorted).
	Children []*Node
}
