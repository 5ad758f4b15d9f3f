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

// Package atr reads and writes the Atari 8-bit ATR disk image container: a
// fixed 16-byte header followed by a raw sector payload in which the first
// three physical sectors are always 128 bytes, regardless of the image's
// declared sector size (§4.7).
package atr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sscafiti/atrsfs/internal/disk"
	"github.com/sscafiti/atrsfs/internal/fs"
	"github.com/sscafiti/atrsfs/internal/sfs"
)

// HeaderSize is the fixed size of the ATR container header.
const HeaderSize = 16

const (
	magicByte0 = 0x96
	magicByte1 = 0x02
)

// ErrBadHeader is returned when a file does not start with the ATR magic.
var ErrBadHeader = errors.New("atr: bad header magic")

// payloadSize computes the paragraph-accounted payload size for nsec
// sectors of ssec bytes, honoring the fixed-128-byte-first-three-sectors
// rule (§4.7).
func payloadSize(ssec, nsec int) int {
	if nsec > 3 {
		return ssec*(nsec-3) + 128*3
	}
	return 128 * nsec
}

// WriteSectors serializes sectorBytes (a flat byte array addressed as
// sec_size*(n-1), i.e. a sfs.Volume's backing storage) as an ATR file at
// path: a 16-byte header followed by each sector's on-disk bytes, where
// sectors 0-2 are truncated to their leading 128 bytes (§4.7).
//
// Grounded on pkg/util/io.CopyFile's buffered single-pass write pattern,
// adapted here to interleave header, truncated, and full-width sectors
// instead of copying a single reader.
func WriteSectors(path string, ssec, nsec int, sectorBytes []byte) error {
	if ssec != sfs.SectorSize128 && ssec != sfs.SectorSize256 {
		return fmt.Errorf("atr: unsupported sector size %d", ssec)
	}
	if len(sectorBytes) < ssec*nsec {
		return fmt.Errorf("atr: sector data too short: want %d bytes, have %d", ssec*nsec, len(sectorBytes))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("atr: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 32*1024)

	size := payloadSize(ssec, nsec) / 16 // paragraphs
	var hdr [HeaderSize]byte
	hdr[0] = magicByte0
	hdr[1] = magicByte1
	hdr[2] = byte(size)
	hdr[3] = byte(size >> 8)
	hdr[4] = byte(ssec)
	hdr[5] = byte(ssec >> 8)
	hdr[6] = byte(size >> 16)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	for i := 0; i < nsec; i++ {
		n := ssec
		if i < 3 {
			n = 128
		}
		off := ssec * i
		if _, err := w.Write(sectorBytes[off : off+n]); err != nil {
			return err
		}
	}

	return w.Flush()
}

// WriteVolume is a convenience wrapper over WriteSectors for a built
// sfs.Volume.
func WriteVolume(path string, v *sfs.Volume) error {
	ssec, nsec := v.Geometry()
	return WriteSectors(path, ssec, nsec, v.Bytes())
}

// Load reads an ATR file from path and materializes it as a uniform
// sector array (sfs.Image), performing the symmetric header parse and the
// zero-padding of the first three sectors' upper bytes when ssec != 128
// (§4.7). path is run through disk.NormalizeVolumePath first so a bare
// drive letter ("D:") opens the same raw volume a Windows user would type
// at a prompt.
//
// On a plain local path, Load tries mmapLoad first: the file is mapped
// read-only instead of copied into a read buffer, and the mapping is
// released again as soon as Decode has copied what it needs out of it.
// mmapLoad always fails on Windows (internal/mmap has no Windows arm) and
// can fail for a raw device or any other path syscall.Mmap rejects, so
// Load falls back to internal/fs.Open+io.ReadAll in that case: fs.Open
// reads a raw device path the same way on Windows (IOCTL-backed handle)
// and everywhere else (a plain *os.File).
func Load(path string) (*sfs.Image, error) {
	normalized := disk.NormalizeVolumePath(path)

	if data, closer, err := mmapLoad(normalized); err == nil {
		img, decodeErr := Decode(data)
		closeErr := closer.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("atr: decode %q: %w", path, decodeErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("atr: close mapping of %q: %w", path, closeErr)
		}
		return img, nil
	}

	f, err := fs.Open(normalized)
	if err != nil {
		return nil, fmt.Errorf("atr: open %q: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("atr: read %q: %w", path, err)
	}
	return Decode(raw)
}

// Decode parses an in-memory ATR file's bytes into a uniform sector array.
func Decode(raw []byte) (*sfs.Image, error) {
	if len(raw) < HeaderSize || raw[0] != magicByte0 || raw[1] != magicByte1 {
		return nil, ErrBadHeader
	}

	ssec := int(raw[4]) | int(raw[5])<<8
	if ssec == 0 {
		ssec = 128
	}
	size := int(raw[2]) | int(raw[3])<<8 | int(raw[6])<<16
	bytesTotal := size * 16

	payload := raw[HeaderSize:]
	if len(payload) < bytesTotal {
		bytesTotal = len(payload)
	}

	var nsec int
	if bytesTotal > 3*128 {
		nsec = 3 + (bytesTotal-3*128)/ssec
	} else {
		nsec = bytesTotal / 128
	}

	data := make([]byte, ssec*nsec)
	pos := 0
	for i := 0; i < nsec; i++ {
		n := ssec
		if i < 3 {
			n = 128
		}
		if pos+n > len(payload) {
			break
		}
		copy(data[ssec*i:ssec*i+n], payload[pos:pos+n])
		pos += n
	}

	return &sfs.Image{Data: data, SectorSize: ssec}, nil
}
