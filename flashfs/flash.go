// Package flashfs implements the flash-partition leaf node. Private
// state is (device_offset, length); reads forward to the host
// flash-read primitive rather than copying from process memory, the
// way go-fuse's fs.LoopbackFile forwards Read to an underlying
// file descriptor instead of serving bytes already in Go-process
// memory.
package flashfs

import (
	"context"
	"log"
	"syscall"

	"github.com/dcvfs/dcvfs/hostio"
	"github.com/dcvfs/dcvfs/vfsnode"
)

// Leaf is the private state of a flash-partition node: device_offset
// and length.
type Leaf struct {
	dev    hostio.FlashDevice
	offset int64
	length int64
}

var (
	_ vfsnode.Stater = (*Leaf)(nil)
	_ vfsnode.Opener = (*Leaf)(nil)
	_ vfsnode.Reader = (*Leaf)(nil)
)

// Mount allocates a flash-partition leaf node named name under
// parent, reading offset..offset+length from dev.
func Mount(parent *vfsnode.Node, name string, dev hostio.FlashDevice, offset, length int64) *vfsnode.Node {
	return vfsnode.Mknode(parent, name, &Leaf{dev: dev, offset: offset, length: length})
}

// ProbeAndMountAll enumerates partition indices 0..15 against dev and
// mounts a node for each that the host reports present, in index
// order. It logs a one-line summary per discovered partition, matching
// the log density of the
// teacher's backend discovery paths (e.g. zipfs.NewArchiveFileSystem
// logging nothing, loopback backends logging on failure) — here we
// log successes since partition discovery is the interesting event at
// mount time for a flash-backed device.
func ProbeAndMountAll(parent *vfsnode.Node, dev hostio.FlashDevice) {
	for i := 0; i < 16; i++ {
		offset, length, ok := dev.ProbePartition(i)
		if !ok {
			continue
		}
		name := partitionName(i)
		Mount(parent, name, dev, offset, length)
		log.Printf("flashfs: %s: offset=%d length=%d", name, offset, length)
	}
}

func partitionName(index int) string {
	const digits = "0123456789"
	if index < 10 {
		return "partition" + string(digits[index])
	}
	return "partition" + string(digits[index/10]) + string(digits[index%10])
}

// Stat reports the partition's configured length.
func (l *Leaf) Stat(n *vfsnode.Node) (vfsnode.StatInfo, syscall.Errno) {
	return vfsnode.StatInfo{Size: l.length}, vfsnode.OK
}

// Open accepts only an empty remainder and read-only mode.
func (l *Leaf) Open(n *vfsnode.Node, h *vfsnode.FileHandle, tail string, write bool) syscall.Errno {
	if tail != "" {
		return syscall.ENOENT
	}
	if write {
		return syscall.EROFS
	}
	return vfsnode.OK
}

// Read forwards to the host flash-read primitive keyed on
// (device_offset+posn, byte_count); a host error is translated through
// hostio.ToErrno.
func (l *Leaf) Read(n *vfsnode.Node, h *vfsnode.FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno) {
	remaining := l.length - h.Posn
	if remaining < 0 {
		remaining = 0
	}
	cnt := int64(elemCount)
	if max := remaining / int64(elemSize); cnt > max {
		cnt = max
	}
	bytes := cnt * int64(elemSize)
	if bytes == 0 {
		return 0, vfsnode.OK
	}

	_, err := l.dev.ReadAt(context.Background(), l.offset+h.Posn, buf[:bytes])
	if err != nil {
		return 0, hostio.ToErrno(err)
	}

	h.Posn += bytes
	h.SetEOF(h.Posn >= l.length)
	return int(cnt), vfsnode.OK
}
