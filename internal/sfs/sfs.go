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

// Package sfs implements the on-disk SpartaDOS File System: a superblock,
// a sector bitmap, linked sector maps and 23-byte directory entries laid
// out over a fixed-geometry sector array.
package sfs

import "errors"

// Sentinel errors returned by the builder and reader. Callers compare with
// errors.Is; the CLI layer turns these into the one-line messages from the
// error handling design.
var (
	ErrOutOfSpace     = errors.New("sfs: out of space")
	ErrBadGeometry    = errors.New("sfs: invalid geometry")
	ErrBadSuperblock  = errors.New("sfs: invalid superblock")
	ErrOutOfRange     = errors.New("sfs: sector out of range")
	ErrDuplicateName  = errors.New("sfs: duplicate name in directory")
	ErrExists         = errors.New("sfs: target already exists")
	ErrNotHowfenDisk  = errors.New("sfs: not a HOWFEN menu disk")
	ErrExtractUnsup   = errors.New("sfs: extraction not supported for this image")
	ErrFileTooLarge   = errors.New("sfs: input file exceeds maximum size")
)

// Sector geometry and size limits (§4.4.1). Build enforces MinSectorCount
// and MaxInputFile; the reader caps directory streams at MaxReadBuffer.
const (
	MinSectorCount = 6
	MaxInputFile   = 16 * 1 << 20 // 16 MiB, per §5
	MaxDirBuffer   = 32 * 1024    // directory scratch buffer size; Build does not check it
	MaxReadBuffer  = 64 * 1024    // cap while streaming a directory during read (2848 entries * 23B ~= 65504B)
)

// Allowed sector sizes. The builder only ever emits 128 or 256; the reader
// additionally accepts the value recorded in the superblock.
const (
	SectorSize128 = 128
	SectorSize256 = 256
)

// Directory entry flag bits (§3).
const (
	FlagInUse     = 1 << 3
	FlagErased    = 1 << 4
	FlagDirectory = 1 << 5
	FlagHidden    = 1 << 0
	FlagProtected = 1 << 1
	FlagArchived  = 1 << 2
)

// DirEntrySize is the fixed width of one on-disk directory record.
const DirEntrySize = 23

// Superblock field offsets within sector 1 (§3, §6).
const (
	sbOffSignature    = 7
	sbOffRootMap      = 9
	sbOffSectorCount  = 11
	sbOffFreeCount    = 13
	sbOffBitmapSector = 16
	sbOffVolumeName   = 22
	sbVolumeNameLen   = 8
	sbOffSectorSize   = 31
	sbSignatureByte   = 0x80
)

// Geometry describes a candidate disk layout: sector size and sector count.
type Geometry struct {
	SectorSize  int
	SectorCount int
}

// Bytes returns the number of data bytes addressable by this
// geometry, ignoring the ATR container's fixed-128-byte first three
// sectors (that adjustment lives in package atr).
func (g Geometry) Bytes() int64 {
	return int64(g.SectorSize) * int64(g.SectorCount)
}
