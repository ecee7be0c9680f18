package gdrom

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"

	"github.com/dcvfs/dcvfs/hostio"
	"github.com/dcvfs/dcvfs/vfsnode"
	"github.com/dcvfs/dcvfs/vfspath"
)

func makeTrackImage(sectors, sectorSize int) []byte {
	b := make([]byte, sectors*sectorSize)
	for i := range b {
		b[i] = byte(i * 13)
	}
	return b
}

// TestUnalignedReadIssuesAtMostTwoSectorReads checks that on a
// 2048-byte-sector data track of 10 sectors, a read at posn=3000 for
// 100 bytes returns track_image[3000:3100] and issues no more than
// two ReadSectors calls.
func TestUnalignedReadIssuesAtMostTwoSectorReads(t *testing.T) {
	const sectorSize = 2048
	image := makeTrackImage(10, sectorSize)
	drv := &hostio.FakeDrive{Tracks: [2][]byte{image, nil}}
	cache := &sectorModeCache{}

	root := vfsnode.MkRoot(&vfsnode.VirtDir{})
	info := TrackInfo{StartSector: 0, EndSector: 10, SectorSize: sectorSize, SectorMode: 1024}
	leaf := mountTrack(root, "track01.iso", drv, cache, info)

	h, errno := vfsnode.Open(leaf, "", false)
	if errno != vfsnode.OK {
		t.Fatalf("Open: %v", errno)
	}
	defer vfsnode.Close(h)
	h.Posn = 3000

	buf := make([]byte, 100)
	n, errno := vfsnode.Read(h, buf, 1, 100)
	if errno != vfsnode.OK {
		t.Fatalf("Read: %v", errno)
	}
	if n != 100 {
		t.Fatalf("Read returned %d elements, want 100", n)
	}
	want := image[3000:3100]
	if !bytes.Equal(buf, want) {
		t.Fatalf("unaligned read mismatch")
	}
	if drv.SectorReadsIssued > 2 {
		t.Fatalf("issued %d sector reads, want at most 2", drv.SectorReadsIssued)
	}
}

// TestBulkReadSpansWholeSectorsInOneCall checks the middle branch of
// the sector-aligned read algorithm: an aligned, whole-sector request
// issues exactly one ReadSectors call covering every requested sector.
func TestBulkReadSpansWholeSectorsInOneCall(t *testing.T) {
	const sectorSize = 2048
	image := makeTrackImage(10, sectorSize)
	drv := &hostio.FakeDrive{Tracks: [2][]byte{image, nil}}
	cache := &sectorModeCache{}

	root := vfsnode.MkRoot(&vfsnode.VirtDir{})
	info := TrackInfo{StartSector: 0, EndSector: 10, SectorSize: sectorSize, SectorMode: 1024}
	leaf := mountTrack(root, "track01.iso", drv, cache, info)

	h, errno := vfsnode.Open(leaf, "", false)
	if errno != vfsnode.OK {
		t.Fatalf("Open: %v", errno)
	}
	defer vfsnode.Close(h)

	buf := make([]byte, 4*sectorSize)
	n, errno := vfsnode.Read(h, buf, 1, len(buf))
	if errno != vfsnode.OK {
		t.Fatalf("Read: %v", errno)
	}
	if n != len(buf) {
		t.Fatalf("Read returned %d, want %d", n, len(buf))
	}
	if !bytes.Equal(buf, image[:len(buf)]) {
		t.Fatalf("bulk read mismatch")
	}
	if drv.SectorReadsIssued != 1 {
		t.Fatalf("issued %d sector reads, want exactly 1 for an aligned bulk request", drv.SectorReadsIssued)
	}
}

func buildTestTOC() hostio.TOC {
	var toc hostio.TOC
	toc.FirstTrack = 1
	toc.LastTrack = 1
	toc.Entries[0] = hostio.TOCEntry{LBA: 0, Ctrl: 4} // data track
	toc.Entries[lastEntryIndex] = hostio.TOCEntry{LBA: 10}
	return toc
}

// TestHotUnmountOrphansHeldHandle checks that a handle held open on a
// track survives a drive-state transition to "not ready" as a stale
// handle rather than a dangling pointer — a subsequent read on it
// returns ESTALE.
func TestHotUnmountOrphansHeldHandle(t *testing.T) {
	const sectorSize = 2048
	image := makeTrackImage(10, sectorSize)
	drv := &hostio.FakeDrive{
		CurrentState: 1,
		Tracks:       [2][]byte{image, nil},
		TOCs:         [2]hostio.TOC{buildTestTOC(), {}},
		TOCErr:       [2]error{nil, errors.New("no second session")},
	}

	root := vfsnode.MkRoot(&vfsnode.VirtDir{})
	var lock sync.Mutex
	mon := NewMonitor(root, drv, &lock, false)

	ctx := context.Background()
	mon.mountTree(ctx)

	const path = "/gdrom/session1/track01.iso"
	track, tailOffset := vfspath.Resolve(root, path)
	if tailOffset != len(path) {
		t.Fatalf("track01.iso not mounted after mountTree: resolved only %q", path[:tailOffset])
	}
	h, errno := vfsnode.Open(track, "", false)
	if errno != vfsnode.OK {
		t.Fatalf("Open: %v", errno)
	}

	mon.unmountTree()

	buf := make([]byte, 16)
	if _, errno := vfsnode.Read(h, buf, 1, len(buf)); errno != syscall.ESTALE {
		t.Fatalf("Read on orphaned handle returned %v, want ESTALE", errno)
	}
}
