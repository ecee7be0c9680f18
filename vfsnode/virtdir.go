package vfsnode

import "syscall"

// VirtDir is the backend for inner (directory) nodes. Children are
// linked through each child Node's own sibling field, so VirtDir
// itself only needs an ordered first/last pair of pointers.
type VirtDir struct {
	first, last *Node
}

var (
	_ ChildAdder   = (*VirtDir)(nil)
	_ ChildRemover = (*VirtDir)(nil)
	_ ChildLister  = (*VirtDir)(nil)
	_ Finder       = (*VirtDir)(nil)
	_ Opendirer    = (*VirtDir)(nil)
	_ Readdirer    = (*VirtDir)(nil)
	_ Closedirer   = (*VirtDir)(nil)
	_ Stater       = (*VirtDir)(nil)
)

// MkVirtDir allocates a new virtual-directory node under parent.
func MkVirtDir(parent *Node, name string) *Node {
	return Mknode(parent, name, &VirtDir{})
}

// AddChild appends child to the tail of the sibling list in O(1)
// using the last pointer.
func (d *VirtDir) AddChild(n, child *Node) {
	child.sibling = nil
	if d.last == nil {
		d.first = child
		d.last = child
		return
	}
	d.last.sibling = child
	d.last = child
}

// RemoveChild performs a linear scan of the sibling list. It reports
// whether child was found.
func (d *VirtDir) RemoveChild(n, child *Node) bool {
	if d.first == child {
		d.first = child.sibling
		if d.last == child {
			d.last = nil
		}
		child.sibling = nil
		return true
	}
	for p := d.first; p != nil; p = p.sibling {
		if p.sibling == child {
			p.sibling = child.sibling
			if d.last == child {
				d.last = p
			}
			child.sibling = nil
			return true
		}
	}
	return false
}

// ListChildren returns the children in insertion order, used by
// Destroy to recurse post-order.
func (d *VirtDir) ListChildren(n *Node) []*Node {
	var out []*Node
	for c := d.first; c != nil; c = c.sibling {
		out = append(out, c)
	}
	return out
}

// Find consumes leading '/'s, matches the next path component against
// a child (exact byte-for-byte match, no case-folding), then consumes
// any run of collapsed '/'s that follows it.
func (d *VirtDir) Find(n *Node, path string) (*Node, int, bool) {
	i := 0
	for i < len(path) && path[i] == '/' {
		i++
	}
	if i >= len(path) {
		return nil, i, false
	}
	start := i
	for i < len(path) && path[i] != '/' {
		i++
	}
	name := path[start:i]

	for c := d.first; c != nil; c = c.sibling {
		if c.name == name {
			for i < len(path) && path[i] == '/' {
				i++
			}
			return c, i, true
		}
	}
	return nil, start, false
}

// Stat reports a virtual directory's node as a directory.
func (d *VirtDir) Stat(n *Node) (StatInfo, syscall.Errno) {
	return StatInfo{IsDir: true}, OK
}

// dirCursor is the Opendirer/Readdirer state stashed in a DirHandle's
// Cursor field: the next child to emit. Readdir follows the live
// sibling chain one step at a time, so this is not a snapshot: a
// child appended before the cursor reaches the end of the list is
// emitted, and if the child the cursor points at is removed, its name
// is still emitted and iteration ends there, because RemoveChild
// clears that child's sibling link.
type dirCursor struct {
	next *Node
}

// Opendir rejects a non-empty tail with ENOTDIR (traversal stopped
// at a directory whose remaining path doesn't name a child — the
// resolver would have matched further otherwise) and otherwise seats
// the cursor at the first child.
func (d *VirtDir) Opendir(n *Node, h *DirHandle, tail string) syscall.Errno {
	if tail != "" {
		return syscall.ENOTDIR
	}
	h.Cursor = &dirCursor{next: d.first}
	return OK
}

// Readdir emits the cursor's current child and advances to its
// sibling; it returns ok=false once the chain is exhausted.
func (d *VirtDir) Readdir(n *Node, h *DirHandle) (Dirent, bool, syscall.Errno) {
	cur, _ := h.Cursor.(*dirCursor)
	if cur == nil || cur.next == nil {
		return Dirent{}, false, OK
	}
	child := cur.next
	cur.next = child.sibling
	return Dirent{Name: child.name}, true, OK
}

// Closedir has nothing backend-side to release: the cursor is plain
// Go data owned by the handle and is freed with it.
func (d *VirtDir) Closedir(n *Node, h *DirHandle) {}
