package sfs

import "encoding/binary"

// Superblock is the parsed view of sector 1 (§3, §6).
type Superblock struct {
	RootMap      uint16
	SectorCount  uint16
	FreeCount    uint16
	BitmapSector uint16
	VolumeName   [8]byte
	SectorSize   int // 0 in the raw byte means 256, per §3
}

// writeSuperblock pokes the superblock fields directly into sector 1's
// bytes, on top of whatever boot code (if any) was written there first —
// the boot prefix and the superblock template share sector 1, as real
// SpartaDOS volumes do (§3, §9).
func writeSuperblock(v *Volume, sb Superblock) {
	buf := v.sectorBytes(1)

	buf[sbOffSignature] = sbSignatureByte
	binary.LittleEndian.PutUint16(buf[sbOffRootMap:sbOffRootMap+2], sb.RootMap)
	binary.LittleEndian.PutUint16(buf[sbOffSectorCount:sbOffSectorCount+2], sb.SectorCount)
	binary.LittleEndian.PutUint16(buf[sbOffFreeCount:sbOffFreeCount+2], sb.FreeCount)
	binary.LittleEndian.PutUint16(buf[sbOffBitmapSector:sbOffBitmapSector+2], sb.BitmapSector)
	copy(buf[sbOffVolumeName:sbOffVolumeName+sbVolumeNameLen], sb.VolumeName[:])

	// §9 open question: the builder must write the sector-size byte
	// explicitly, even for the value (256) that the reader would
	// otherwise default to when it finds a zero there.
	if sb.SectorSize == 256 {
		buf[sbOffSectorSize] = 0
	} else {
		buf[sbOffSectorSize] = byte(sb.SectorSize)
	}
}

// parseSuperblock validates and decodes sector 1. It does not validate
// RootMap/BitmapSector bounds against the container's sector count; callers
// do that once they know it (§4.5 step 1).
func parseSuperblock(sector1 []byte) (Superblock, error) {
	if len(sector1) <= sbOffSignature || sector1[sbOffSignature] != sbSignatureByte {
		return Superblock{}, ErrBadSuperblock
	}

	var sb Superblock
	sb.RootMap = binary.LittleEndian.Uint16(sector1[sbOffRootMap : sbOffRootMap+2])
	sb.SectorCount = binary.LittleEndian.Uint16(sector1[sbOffSectorCount : sbOffSectorCount+2])
	sb.FreeCount = binary.LittleEndian.Uint16(sector1[sbOffFreeCount : sbOffFreeCount+2])
	sb.BitmapSector = binary.LittleEndian.Uint16(sector1[sbOffBitmapSector : sbOffBitmapSector+2])
	copy(sb.VolumeName[:], sector1[sbOffVolumeName:sbOffVolumeName+sbVolumeNameLen])

	sizeByte := sector1[sbOffSectorSize]
	if sizeByte == 0 {
		sb.SectorSize = 256
	} else {
		sb.SectorSize = int(sizeByte)
	}
	return sb, nil
}
