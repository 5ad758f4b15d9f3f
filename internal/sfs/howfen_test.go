package sfs

import "testing"

// screenEncodeASCII maps a plain ASCII string (letters, digits, space) to
// the screen-code bytes howfenDecodeName's c&0x40==0 branch (c += 0x20)
// will decode back to the original characters.
func screenEncodeASCII(s string) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[i] - 0x20
	}
	return out
}

// buildHowfenImage lays out a synthetic HOWFEN DOS menu disk: the fixed
// signature, a plain version field, and one valid directory entry.
func buildHowfenImage(t *testing.T) *Image {
	t.Helper()
	const secSize = 256
	const secCount = 20
	data := make([]byte, secSize*secCount)

	copy(data[howfenSigOffset:], howfenSignature[:])

	// Screen-code-encoded "V1.00": decoding maps each byte through
	// (c&0x3F)+0x20, and only a leading 0x36 byte triggers the translation.
	ver := []byte{0x36, 0x11, 0x0E, 0x10, 0x10}
	copy(data[howfenVerOffset:], ver)

	entry := data[howfenDirOffset : howfenDirOffset+howfenEntrySize]
	entry[0] = 0x21 // first entry marker
	// "GAME ONE" screen-code encoded: each raw byte decodes via (c+0x20)
	// back to its ASCII letter (howfenDecodeName's c&0x40==0 branch).
	name := screenEncodeASCII("GAME ONE")
	copy(entry[howfenNameOffset:howfenNameOffset+len(name)], name)
	for i := len(name); i < howfenNameLen; i++ {
		entry[howfenNameOffset+i] = 0x00 // screen code for space
	}
	copy(entry[howfenSizeOffset:howfenSizeOffset+4], []byte{0x10, 0x11, 0x14, 0x15}) // "0145"

	return &Image{Data: data, SectorSize: secSize}
}

func TestOpenHowfenDecodesSignatureAndEntry(t *testing.T) {
	img := buildHowfenImage(t)

	vol, err := OpenHowfen(img, false)
	if err != nil {
		t.Fatalf("OpenHowfen: %v", err)
	}
	if vol.Version != "V1.00" {
		t.Errorf("Version = %q, want %q", vol.Version, "V1.00")
	}
	if len(vol.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(vol.Entries))
	}
	e := vol.Entries[0]
	if e.Name != "GAME ONE" {
		t.Errorf("Name = %q, want %q", e.Name, "GAME ONE")
	}
	if e.SizeBytes != 145*256 {
		t.Errorf("SizeBytes = %d, want %d", e.SizeBytes, 145*256)
	}
}

func TestOpenHowfenRejectsMissingSignature(t *testing.T) {
	img := buildHowfenImage(t)
	img.Data[howfenSigOffset] = 0 // corrupt the signature

	_, err := OpenHowfen(img, false)
	if err != ErrNotHowfenDisk {
		t.Fatalf("err = %v, want ErrNotHowfenDisk", err)
	}
}

func TestOpenHowfenRejectsTooFewSectors(t *testing.T) {
	img := &Image{Data: make([]byte, 256*5), SectorSize: 256}
	_, err := OpenHowfen(img, false)
	if err != ErrNotHowfenDisk {
		t.Fatalf("err = %v, want ErrNotHowfenDisk", err)
	}
}

func TestHowfenDecodeLenSkipsNonDigits(t *testing.T) {
	// screen codes 0x10-0x19 map to '0'-'9'; anything else is ignored.
	got := howfenDecodeLen([]byte{0x10, 0x11, 0x15, 0x10})
	if got != 145 {
		t.Fatalf("howfenDecodeLen = %d, want 145", got)
	}
}
