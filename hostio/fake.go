package hostio

import (
	"context"
	"fmt"
)

// FakeFlash is an in-memory FlashDevice used by flashfs's tests and by
// the dcvfs façade's own example wiring. It models a flat backing
// store with a fixed set of partitions carved out of it.
type FakeFlash struct {
	Backing    []byte
	Partitions map[int][2]int64 // index -> [offset, length]
}

var _ FlashDevice = (*FakeFlash)(nil)

func (f *FakeFlash) ProbePartition(index int) (int64, int64, bool) {
	p, ok := f.Partitions[index]
	if !ok {
		return 0, 0, false
	}
	return p[0], p[1], true
}

func (f *FakeFlash) ReadAt(ctx context.Context, offset int64, buf []byte) (int, error) {
	if offset < 0 || offset+int64(len(buf)) > int64(len(f.Backing)) {
		return 0, fmt.Errorf("hostio: flash read out of range")
	}
	return copy(buf, f.Backing[offset:offset+int64(len(buf))]), nil
}

// FakeDrive is an in-memory OpticalDrive used by gdrom's tests. Its
// state is mutated directly by the test to simulate disc insertion
// and removal; SectorReadsIssued counts ReadSectors calls so tests
// can assert on I/O amplification.
type FakeDrive struct {
	CurrentState DriveState
	TOCs         [2]TOC
	TOCErr       [2]error
	Tracks       [2][]byte // raw sector-concatenated track images, indexed by session

	SpinUpFailures int // number of SpinUp calls that fail before success

	spinUpCalls       int
	SectorReadsIssued int
	lastSectorSize    int
	lastSectorMode    int
	ModeSwitches      int
}

var _ OpticalDrive = (*FakeDrive)(nil)

func (d *FakeDrive) State(ctx context.Context) (DriveState, error) {
	return d.CurrentState, nil
}

func (d *FakeDrive) SpinUp(ctx context.Context) error {
	d.spinUpCalls++
	if d.spinUpCalls <= d.SpinUpFailures {
		return fmt.Errorf("hostio: spin-up attempt %d failed", d.spinUpCalls)
	}
	return nil
}

func (d *FakeDrive) ReadTOC(ctx context.Context, session int) (TOC, error) {
	if err := d.TOCErr[session]; err != nil {
		return TOC{}, err
	}
	return d.TOCs[session], nil
}

func (d *FakeDrive) SetSectorMode(ctx context.Context, sectorSize, sectorMode int) error {
	d.lastSectorSize = sectorSize
	d.lastSectorMode = sectorMode
	d.ModeSwitches++
	return nil
}

func (d *FakeDrive) ReadSectors(ctx context.Context, lba, count, sectorSize int, buf []byte) error {
	d.SectorReadsIssued++
	// lba is absolute across the session's single backing image in
	// this fake; tests construct Tracks[0] to already start at
	// sector 0 of the session for simplicity.
	start := lba * sectorSize
	end := start + count*sectorSize
	img := d.Tracks[0]
	if start < 0 || end > len(img) {
		return fmt.Errorf("hostio: sector read out of range [%d,%d) of %d", start, end, len(img))
	}
	copy(buf, img[start:end])
	return nil
}
