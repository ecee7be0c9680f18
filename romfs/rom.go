// Package romfs implements the ROM leaf node. A ROM leaf is a
// read-only view over a byte range already resident in process
// memory — grounded on go-fuse's zipfs.zipFile, which likewise
// serves Read calls out of an in-memory []byte rather than forwarding
// to a backing device.
package romfs

import (
	"syscall"

	"github.com/dcvfs/dcvfs/vfsnode"
)

// Leaf is the private state of a ROM node: a data pointer and length.
// Go's slice already carries both; there is no separate pointer/length
// pair to track.
type Leaf struct {
	data []byte
}

var (
	_ vfsnode.Stater = (*Leaf)(nil)
	_ vfsnode.Opener = (*Leaf)(nil)
	_ vfsnode.Reader = (*Leaf)(nil)
)

// Mount allocates a ROM leaf node named name under parent, backed by
// data. data is not copied: callers are expected to pass a region
// that outlives the node (e.g. a package-level []byte for a compiled
// -in ROM image), matching the source's raw pointer into the 2MiB ROM
// region at a fixed host address.
func Mount(parent *vfsnode.Node, name string, data []byte) *vfsnode.Node {
	return vfsnode.Mknode(parent, name, &Leaf{data: data})
}

// Stat reports the byte length of the ROM region.
func (l *Leaf) Stat(n *vfsnode.Node) (vfsnode.StatInfo, syscall.Errno) {
	return vfsnode.StatInfo{Size: int64(len(l.data))}, vfsnode.OK
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

// Read computes cnt = min(elemCount, (length-posn)/elemSize), copies
// cnt*elemSize bytes from the ROM region at offset posn, advances
// posn, and returns cnt.
func (l *Leaf) Read(n *vfsnode.Node, h *vfsnode.FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno) {
	remaining := int64(len(l.data)) - h.Posn
	if remaining < 0 {
		remaining = 0
	}
	cnt := int64(elemCount)
	if max := remaining / int64(elemSize); cnt > max {
		cnt = max
	}
	bytes := cnt * int64(elemSize)
	copy(buf, l.data[h.Posn:h.Posn+bytes])
	h.Posn += bytes
	h.SetEOF(h.Posn >= int64(len(l.data)))
	return int(cnt), vfsnode.OK
}

// Data returns the full backing byte range.
func (l *Leaf) Data() []byte { return l.data }
