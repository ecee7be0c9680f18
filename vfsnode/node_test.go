package vfsnode

import (
	"syscall"
	"testing"
)

// memLeaf is a minimal in-package stand-in for a leaf backend (the
// real ROM/flash/track leaves live in sibling packages that import
// vfsnode, so they can't be used from vfsnode's own internal tests
// without an import cycle). It exercises exactly the Opener/Reader/
// Stater capabilities these tests need.
type memLeaf struct {
	data []byte
}

func (m *memLeaf) Stat(n *Node) (StatInfo, syscall.Errno) {
	return StatInfo{Size: int64(len(m.data))}, OK
}

func (m *memLeaf) Open(n *Node, h *FileHandle, tail string, write bool) syscall.Errno {
	if tail != "" {
		return syscall.ENOENT
	}
	if write {
		return syscall.EROFS
	}
	return OK
}

func (m *memLeaf) Read(n *Node, h *FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno) {
	remaining := int64(len(m.data)) - h.Posn
	if remaining < 0 {
		remaining = 0
	}
	cnt := int64(elemCount)
	if max := remaining / int64(elemSize); cnt > max {
		cnt = max
	}
	bytes := cnt * int64(elemSize)
	copy(buf, m.data[h.Posn:h.Posn+bytes])
	h.Posn += bytes
	h.SetEOF(h.Posn >= int64(len(m.data)))
	return int(cnt), OK
}

func mkMemLeaf(parent *Node, name string, data []byte) *Node {
	return Mknode(parent, name, &memLeaf{data: data})
}

// TestDestroyOrphansHandles checks that after Destroy, every handle
// previously opened against the node has Node() == nil, and the next
// read returns ESTALE while close still succeeds.
func TestDestroyOrphansHandles(t *testing.T) {
	root := MkRoot(&VirtDir{})
	leaf := mkMemLeaf(root, "data", []byte("hello world"))

	fh, errno := Open(leaf, "", false)
	if errno != OK {
		t.Fatalf("Open: %v", errno)
	}

	Destroy(leaf)

	if fh.Node() != nil {
		t.Fatalf("handle not orphaned after Destroy")
	}

	buf := make([]byte, 4)
	if _, errno := Read(fh, buf, 1, len(buf)); errno != syscall.ESTALE {
		t.Fatalf("Read on orphaned handle: got %v, want ESTALE", errno)
	}
	if errno := Close(fh); errno != OK {
		t.Fatalf("Close on orphaned handle: got %v, want OK", errno)
	}
}

// TestHandleListMembership checks that every handle on a node's handle
// list has handle.node == node.
func TestHandleListMembership(t *testing.T) {
	root := MkRoot(&VirtDir{})
	leaf := mkMemLeaf(root, "data", []byte("0123456789"))

	h1, _ := Open(leaf, "", false)
	h2, _ := Open(leaf, "", false)

	if h1.Node() != leaf || h2.Node() != leaf {
		t.Fatalf("opened handle not bound to its node")
	}

	Close(h1)
	if h2.Node() != leaf {
		t.Fatalf("closing one handle disturbed a sibling handle's binding")
	}
	Close(h2)
}

// TestChildListMembership checks that a non-root node's parent's child
// list contains it exactly once.
func TestChildListMembership(t *testing.T) {
	root := MkRoot(&VirtDir{})
	a := MkVirtDir(root, "a")
	MkVirtDir(root, "b")

	children := root.backend.(*VirtDir).ListChildren(root)
	count := 0
	for _, c := range children {
		if c == a {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("child %q appears %d times in parent's list, want 1", a.Name(), count)
	}
}

// TestCloseNilHandle checks that closing a nil handle yields EBADF.
func TestCloseNilHandle(t *testing.T) {
	var h *FileHandle
	if errno := Close(h); errno != syscall.EBADF {
		t.Fatalf("Close(nil): got %v, want EBADF", errno)
	}
	var dh *DirHandle
	if errno := Closedir(dh); errno != syscall.EBADF {
		t.Fatalf("Closedir(nil): got %v, want EBADF", errno)
	}
}

// TestOpenUnsupportedOnDirectory checks that a virtual directory has
// no Opener capability and so reports ENOSYS.
func TestOpenUnsupportedOnDirectory(t *testing.T) {
	root := MkRoot(&VirtDir{})
	if _, errno := Open(root, "", false); errno != syscall.ENOSYS {
		t.Fatalf("Open on directory: got %v, want ENOSYS", errno)
	}
}

// TestOpendirUnsupportedOnLeaf checks that a leaf has no Opendirer
// capability and so reports ENOTDIR.
func TestOpendirUnsupportedOnLeaf(t *testing.T) {
	root := MkRoot(&VirtDir{})
	leaf := mkMemLeaf(root, "data", []byte("x"))
	if _, errno := Opendir(leaf, ""); errno != syscall.ENOTDIR {
		t.Fatalf("Opendir on leaf: got %v, want ENOTDIR", errno)
	}
}
