// Package hostio declares the host-specific collaborators this module
// puts explicitly out of scope: flash info/read syscalls and the
// optical-drive command channel. Only the interfaces live here; real
// implementations talk to hardware registers or a kernel driver and
// are supplied by the embedder, the way go-fuse's loopback.go
// takes an *os.File fd rather than implementing a filesystem driver
// itself.
package hostio

import "context"

// FlashDevice is the host primitive backing flashfs. ProbePartition
// mirrors the source's syscall_info_flash: it reports whether
// partition index exists and, if so, its (offset, length) in device
// bytes. ReadAt mirrors syscall_read_flash.
type FlashDevice interface {
	ProbePartition(index int) (offset, length int64, ok bool)
	ReadAt(ctx context.Context, offset int64, buf []byte) (int, error)
}

// DriveState is the coarse media-presence signal the disc monitor
// polls. Values 1..5 mean "media present, ready"; anything else
// (including "no disc", "open tray") means not ready.
type DriveState int

// Ready reports whether s falls in the source's accepted [1,5] range.
func (s DriveState) Ready() bool { return s >= 1 && s <= 5 }

// TOC is the table-of-contents structure a session query returns.
// FirstTrack/LastTrack are 1-based track numbers (matching the
// original TOC_TRACK(toc.first)/TOC_TRACK(toc.last) macros); Entries
// is indexed by (track number - 1), plus index 100 holds the
// lead-out entry the source addresses as index 101 confusingly
// offset from a 1-based array — here Entries[100] is simply "the
// entry one past the last track".
type TOC struct {
	FirstTrack, LastTrack int
	Entries               [101]TOCEntry
}

// TOCEntry is one track's descriptor within a TOC: LBA plus the
// ADR/CTRL byte pair from the TOC.
type TOCEntry struct {
	LBA  int64
	Ctrl byte
	Adr  byte
}

// DataTrack reports whether the CTRL nibble marks this as a data
// track (bit 2 set) rather than CD-DA audio — ctrl&4 in the original.
func (e TOCEntry) DataTrack() bool { return e.Ctrl&4 != 0 }

// OpticalDrive is the host primitive backing the gdrom package:
// drive-state polling, spin-up, TOC queries, and sector reads with a
// stateful "change data type" command that must be reprogrammed
// whenever the requested sector geometry changes.
type OpticalDrive interface {
	// State reports the current drive state.
	State(ctx context.Context) (DriveState, error)

	// SpinUp issues the "prepare" command. The monitor retries this
	// up to 8 times before giving up.
	SpinUp(ctx context.Context) error

	// ReadTOC queries the TOC for the given session (0 or 1, for
	// session1/session2). A failure here for both sessions abandons
	// the mount attempt.
	ReadTOC(ctx context.Context, session int) (TOC, error)

	// SetSectorMode programs the drive for the given sector size and
	// mode, ahead of a read at that geometry.
	SetSectorMode(ctx context.Context, sectorSize, sectorMode int) error

	// ReadSectors reads count sectors starting at lba into buf, which
	// must be at least count*sectorSize bytes. The caller is
	// responsible for calling SetSectorMode first when the geometry
	// changed (the gdrom package's sector-mode cache does this).
	ReadSectors(ctx context.Context, lba, count, sectorSize int, buf []byte) error
}
