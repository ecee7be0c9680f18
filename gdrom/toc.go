package gdrom

import (
	"encoding/binary"

	"github.com/dcvfs/dcvfs/hostio"
	"github.com/dcvfs/dcvfs/romfs"
	"github.com/dcvfs/dcvfs/vfsnode"
)

// lastEntryIndex is where a session's TOC keeps the lead-out entry
// used as the "next" track boundary for the session's final track
// (the original's toc[n].entry[101], addressed here as Entries[100]).
const lastEntryIndex = 100

// encodeTOC serializes a TOC the same way the source exposes it to a
// ROM leaf: the raw struct bytes (vfsnode_mkromnode(parent, "toc",
// &toc[n], sizeof(toc[n]))). There's no archive/container format in
// play here, just a fixed-layout dump, so plain encoding/binary
// stands in for the source's direct memory copy.
func encodeTOC(t hostio.TOC) []byte {
	buf := make([]byte, 8+101*10)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(t.FirstTrack))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(t.LastTrack))
	off := 8
	for _, e := range t.Entries {
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(e.LBA))
		buf[off+8] = e.Ctrl
		buf[off+9] = e.Adr
		off += 10
	}
	return buf
}

// buildSession mounts a "toc" ROM leaf plus one track node per entry
// in [FirstTrack, LastTrack] (clamped to the valid 1..99 track-number
// range), matching make_vfsnodes_session/make_vfsnodes_track.
func buildSession(parent *vfsnode.Node, toc hostio.TOC, cdxa bool, drv hostio.OpticalDrive, cache *sectorModeCache) {
	romfs.Mount(parent, "toc", encodeTOC(toc))

	first, last := toc.FirstTrack, toc.LastTrack
	for track := first; track <= last; track++ {
		if track < 1 || track > 99 {
			continue
		}
		entry := toc.Entries[track-1]
		var next hostio.TOCEntry
		if track == last {
			next = toc.Entries[lastEntryIndex]
		} else {
			next = toc.Entries[track]
		}
		if next.LBA < entry.LBA {
			continue
		}
		dataTrack := entry.DataTrack()
		sectorSize := 2352
		sectorMode := 0
		if dataTrack {
			sectorSize = 2048
			if cdxa {
				sectorMode = 2048
			} else {
				sectorMode = 1024
			}
		}
		info := TrackInfo{
			StartSector: int(entry.LBA),
			EndSector:   int(next.LBA),
			SectorSize:  sectorSize,
			SectorMode:  sectorMode,
			Ctrl:        entry.Ctrl,
			Adr:         entry.Adr,
		}
		mountTrack(parent, trackName(track, dataTrack), drv, cache, info)
	}
}
