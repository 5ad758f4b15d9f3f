package sfs

import (
	"fmt"
	"time"

	"github.com/sscafiti/atrsfs/internal/logger"
)

// Image is a loaded, uniform sector array plus the geometry it was loaded
// with (§4.5 step 1's "container layer materializes a uniform sector
// array"). Package atr produces one of these from an ATR file; tests can
// build one directly from a Volume.
type Image struct {
	Data       []byte
	SectorSize int
}

func (img *Image) sectorBytes(n int) ([]byte, bool) {
	off := img.SectorSize * (n - 1)
	if n < 1 || off < 0 || off+img.SectorSize > len(img.Data) {
		return nil, false
	}
	return img.Data[off : off+img.SectorSize], true
}

// Entry is a listing-friendly view of one directory record, with its path
// resolved relative to the volume root.
type Entry struct {
	Path  string
	Entry DirEntry
}

// Reader walks an Image's SFS structures to list or extract its contents
// (§4.5).
type Reader struct {
	img *Image
	sb  Superblock
	log *logger.Logger
}

// Open parses and validates the superblock and returns a Reader (§4.5
// step 1). A signature mismatch is fatal; a sector-size mismatch between
// the superblock and the container is reported as a warning, not an error,
// per §7's corruption policy — only the superblock signature and the
// declared root/bitmap bounds are fatal.
func Open(img *Image, log *logger.Logger) (*Reader, error) {
	if log == nil {
		log = logger.Discard()
	}
	sector1, ok := img.sectorBytes(1)
	if !ok {
		return nil, ErrBadSuperblock
	}
	sb, err := parseSuperblock(sector1)
	if err != nil {
		return nil, err
	}

	if sb.SectorSize != img.SectorSize {
		log.Warnf("superblock sector size %d disagrees with container sector size %d", sb.SectorSize, img.SectorSize)
	}
	imgSectorCount := len(img.Data) / img.SectorSize
	if int(sb.SectorCount) != imgSectorCount {
		log.Warnf("superblock sector count %d disagrees with image sector count %d", sb.SectorCount, imgSectorCount)
	}

	if _, ok := img.sectorBytes(int(sb.RootMap)); !ok {
		return nil, fmt.Errorf("%w: root map sector %d", ErrOutOfRange, sb.RootMap)
	}
	if _, ok := img.sectorBytes(int(sb.BitmapSector)); !ok {
		return nil, fmt.Errorf("%w: bitmap sector %d", ErrOutOfRange, sb.BitmapSector)
	}

	return &Reader{img: img, sb: sb, log: log.Named("sfs.reader")}, nil
}

// Superblock exposes the parsed superblock fields.
func (r *Reader) Superblock() Superblock { return r.sb }

// ReadMap streams the bytes addressed by a sector-map chain, per §4.5
// step 3's read_map: walk the chain, copy min(remaining, sec_size) bytes
// per non-zero slot, emit sec_size zero bytes for a zero slot (a sparse
// hole), stop at size, at next_map==0, or at an out-of-range sector
// (warning, return what was read so far).
func (r *Reader) ReadMap(mapSector int, size int) []byte {
	out := make([]byte, 0, size)
	secSize := r.img.SectorSize
	slots := (secSize - 4) / 2

	cur := mapSector
	for cur != 0 && len(out) < size {
		buf, ok := r.img.sectorBytes(cur)
		if !ok {
			r.log.Warnf("map chain references out-of-range sector %d", cur)
			break
		}
		next := int(buf[0]) | int(buf[1])<<8

		for i := 0; i < slots && len(out) < size; i++ {
			off := 4 + i*2
			slot := int(buf[off]) | int(buf[off+1])<<8

			remaining := size - len(out)
			n := secSize
			if remaining < n {
				n = remaining
			}

			if slot == 0 {
				out = append(out, make([]byte, n)...)
				continue
			}

			data, ok := r.img.sectorBytes(slot)
			if !ok {
				r.log.Warnf("data slot references out-of-range sector %d", slot)
				return out
			}
			out = append(out, data[:n]...)
		}
		cur = next
	}

	if len(out) < size {
		r.log.Warnf("short read: wanted %d bytes, got %d", size, len(out))
	}
	return out
}

// ReadDir parses one directory's entry stream: the header entry followed
// by one entry per child, skipping terminators, erased and not-in-use
// records (§4.5 step 3).
func (r *Reader) ReadDir(mapSector int) (header DirEntry, children []DirEntry, err error) {
	raw := r.ReadMap(mapSector, MaxReadBuffer)
	if len(raw) < DirEntrySize {
		return DirEntry{}, nil, fmt.Errorf("sfs: directory too short to contain a header")
	}

	header = DecodeDirEntry(raw[0:DirEntrySize])
	total := int(header.Size)
	if total > len(raw) {
		r.log.Warnf("directory header claims %d bytes, only read %d", total, len(raw))
		total = len(raw) - (len(raw) % DirEntrySize)
	}

	for off := DirEntrySize; off+DirEntrySize <= total; off += DirEntrySize {
		e := DecodeDirEntry(raw[off : off+DirEntrySize])
		if e.IsTerminator() {
			break
		}
		if !e.InUse() || e.Erased() {
			continue
		}
		children = append(children, e)
	}
	return header, children, nil
}

// Walk visits every entry reachable from the root directory, depth first,
// calling fn with the entry's path (slash-separated, relative to the
// volume root) and decoded record. Returning an error from fn stops the
// walk and propagates.
func (r *Reader) Walk(fn func(path string, e DirEntry) error) error {
	_, children, err := r.ReadDir(int(r.sb.RootMap))
	if err != nil {
		return err
	}
	return r.walkChildren("", children, fn)
}

func (r *Reader) walkChildren(prefix string, children []DirEntry, fn func(string, DirEntry) error) error {
	for _, e := range children {
		path := e.NameString()
		if prefix != "" {
			path = prefix + "/" + path
		}
		if err := fn(path, e); err != nil {
			return err
		}
		if e.IsDir() {
			_, grandchildren, err := r.ReadDir(int(e.Map))
			if err != nil {
				r.log.Warnf("skipping unreadable directory %q: %s", path, err)
				continue
			}
			if err := r.walkChildren(path, grandchildren, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadFile streams a regular file's full contents.
func (r *Reader) ReadFile(e DirEntry) []byte {
	return r.ReadMap(int(e.Map), int(e.Size))
}

// ModTime is a thin convenience wrapper so callers don't need to import
// time themselves just to read an entry's timestamp.
func ModTime(e DirEntry) time.Time { return e.ModTime() }
