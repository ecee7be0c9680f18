// Package vfsnode implements the node graph and capability dispatch at
// the core of the virtual filesystem: a tree of Node values, each
// carrying a kind-specific backend, traversed and mutated under a
// single caller-supplied lock.
//
// A Node's backend is a plain Go value; which operations it supports
// is discovered by type-asserting it against the single-method
// capability interfaces below (Finder, Stater, Opener, ...), mirroring
// how github.com/hanwen/go-fuse's fs package discovers NodeGetattrer,
// NodeReader, and friends on an InodeEmbedder. A backend that doesn't
// implement a capability simply doesn't get it: the dispatch functions
// in dispatch.go return syscall.ENOSYS for operations it has no interface for, and
// syscall.ENOTDIR / syscall.ENOENT for tree-shape mismatches.
package vfsnode

import (
	"syscall"
	"time"
)

// OK is the zero Errno, returned on success.
const OK = syscall.Errno(0)

// StatInfo is the result of a stat call: is_dir/size are reported
// explicitly rather than through a raw st_mode bitfield. ModTime is
// the zero time.Time for every built-in kind: none of the
// ROM, flash, or optical sources carries a modification timestamp, so
// there is nothing truthful to report.
type StatInfo struct {
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Dirent is one entry yielded by Readdir.
type Dirent struct {
	Name string
}

// Finder is implemented by inner (directory) nodes. It consumes
// leading path separators, matches the next path component against
// children, and returns the matched child plus the byte offset into
// path where the unconsumed remainder begins. ok is false when no
// child matches what follows a leading run of separators.
type Finder interface {
	Find(n *Node, path string) (child *Node, tailOffset int, ok bool)
}

// Stater reports size/kind information for a node.
type Stater interface {
	Stat(n *Node) (StatInfo, syscall.Errno)
}

// Opendirer seats a freshly allocated directory handle's cursor.
// tail is the remainder of the path after the node was resolved; a
// non-empty tail means the caller tried to opendir through a leaf.
type Opendirer interface {
	Opendir(n *Node, h *DirHandle, tail string) syscall.Errno
}

// Readdirer advances a directory handle's cursor and yields the next
// entry. ok is false at end of stream.
type Readdirer interface {
	Readdir(n *Node, h *DirHandle) (Dirent, bool, syscall.Errno)
}

// Closedirer releases any backend-side state held by a directory
// handle's cursor.
type Closedirer interface {
	Closedir(n *Node, h *DirHandle)
}

// Opener validates a file open: a non-empty tail or a write-mode
// request is rejected here, before a handle is seated.
type Opener interface {
	Open(n *Node, h *FileHandle, tail string, write bool) syscall.Errno
}

// Reader performs a sequential, element-counted read starting at
// h.Posn: an fread(buf, elem_size, elem_count)-shaped contract. buf
// has capacity for at least elemSize*elemCount bytes. The backend
// computes cnt = min(elemCount, (remaining)/elemSize), copies
// cnt*elemSize bytes into buf, advances h.Posn by that many bytes, and
// returns cnt (a count of whole elements, not bytes) — a short count
// never splits a partial element across calls.
type Reader interface {
	Read(n *Node, h *FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno)
}

// Closer releases any backend-side state held by a file handle.
type Closer interface {
	Close(n *Node, h *FileHandle)
}

// ChildAdder appends a newly minted child to a directory node's
// sibling list. Only virtual directories implement this.
type ChildAdder interface {
	AddChild(n, child *Node)
}

// ChildRemover detaches a child from a directory node's sibling list.
type ChildRemover interface {
	RemoveChild(n, child *Node) bool
}

// Destroyer runs kind-specific teardown after children are destroyed
// and handles are orphaned, but before the node's backend is dropped.
type Destroyer interface {
	OnDestroy(n *Node)
}

// ChildLister is implemented by directory backends so Destroy can
// recurse into descendants before tearing down the directory itself;
// destruction is post-order.
type ChildLister interface {
	ListChildren(n *Node) []*Node
}
