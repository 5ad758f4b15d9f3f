package sfs

import (
	"encoding/binary"
	"strings"
	"time"
)

// DirEntry is the 23-byte on-disk directory record (§3).
type DirEntry struct {
	Flags byte
	Map   uint16
	Size  uint32 // only the low 24 bits are ever written
	Name  [11]byte
	Day   byte
	Month byte
	Year  byte // year mod 100
	Hour  byte
	Min   byte
	Sec   byte
}

// IsTerminator reports whether this entry marks the end of a directory
// stream (§4.5 step 3: flags == 0).
func (e DirEntry) IsTerminator() bool { return e.Flags == 0 }

// InUse reports whether bit3 of Flags is set.
func (e DirEntry) InUse() bool { return e.Flags&FlagInUse != 0 }

// Erased reports whether bit4 of Flags is set.
func (e DirEntry) Erased() bool { return e.Flags&FlagErased != 0 }

// IsDir reports whether bit5 of Flags is set.
func (e DirEntry) IsDir() bool { return e.Flags&FlagDirectory != 0 }

// NameString returns the space-trimmed, dotted 8.3 form of Name, e.g.
// "HELLO.TXT" for {'H','E','L','L','O',' ',' ',' ','T','X','T'}.
func (e DirEntry) NameString() string {
	base := strings.TrimRight(string(e.Name[0:8]), " ")
	ext := strings.TrimRight(string(e.Name[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ModTime reconstructs the entry's timestamp, assuming years 0-99 map to
// 2000-2099 (the DOS this format predates a 2000 epoch split, but nothing
// in the spec calls for one).
func (e DirEntry) ModTime() time.Time {
	return time.Date(2000+int(e.Year), time.Month(e.Month), int(e.Day),
		int(e.Hour), int(e.Min), int(e.Sec), 0, time.UTC)
}

// SFSName encodes a dotted 8.3 host name into the padded, uppercased 11-byte
// form used on disk. The caller is responsible for ensuring name is already
// valid 8.3 (host-name normalization is an external collaborator per §1);
// this only pads, uppercases and truncates to 8+3 characters.
func SFSName(name string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	base, ext, _ := strings.Cut(name, ".")
	base = strings.ToUpper(base)
	ext = strings.ToUpper(ext)
	if len(base) > 8 {
		base = base[:8]
	}
	if len(ext) > 3 {
		ext = ext[:3]
	}
	copy(out[0:8], base)
	copy(out[8:11], ext)
	return out
}

// Encode writes the 23-byte on-disk representation of e into dst, which
// must have length >= DirEntrySize.
func (e DirEntry) Encode(dst []byte) {
	_ = dst[DirEntrySize-1]
	dst[0] = e.Flags
	binary.LittleEndian.PutUint16(dst[1:3], e.Map)
	dst[3] = byte(e.Size)
	dst[4] = byte(e.Size >> 8)
	dst[5] = byte(e.Size >> 16)
	copy(dst[6:17], e.Name[:])
	dst[17] = e.Day
	dst[18] = e.Month
	dst[19] = e.Year
	dst[20] = e.Hour
	dst[21] = e.Min
	dst[22] = e.Sec
}

// DecodeDirEntry parses a 23-byte on-disk record.
func DecodeDirEntry(src []byte) DirEntry {
	_ = src[DirEntrySize-1]
	var e DirEntry
	e.Flags = src[0]
	e.Map = binary.LittleEndian.Uint16(src[1:3])
	e.Size = uint32(src[3]) | uint32(src[4])<<8 | uint32(src[5])<<16
	copy(e.Name[:], src[6:17])
	e.Day = src[17]
	e.Month = src[18]
	e.Year = src[19]
	e.Hour = src[20]
	e.Min = src[21]
	e.Sec = src[22]
	return e
}

// dateTimeFields splits a time.Time into the three-byte date and three-byte
// time fields used by directory entries.
func dateTimeFields(t time.Time) (day, month, year, hour, min, sec byte) {
	return byte(t.Day()), byte(t.Month()), byte(t.Year() % 100),
		byte(t.Hour()), byte(t.Minute()), byte(t.Second())
}
