package vfsnode

// Node is one element of the VFS tree. The zero value is not usable;
// construct nodes with Mknode. Every field below is only ever mutated
// by a caller holding the engine-wide VFS lock — Node itself takes no
// lock, matching go-fuse's convention of leaving coarse
// concurrency control to the bridge layer rather than to individual
// tree nodes.
type Node struct {
	name    string
	parent  *Node
	sibling *Node

	backend interface{}

	dirHandles  *DirHandle
	fileHandles *FileHandle
}

// Name reports the node's own path component; the root's name is "".
func (n *Node) Name() string { return n.name }

// Parent reports the node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Backend returns the kind-specific private state, for capability
// type-assertions outside this package. The dispatch functions in
// dispatch.go read the field directly.
func (n *Node) Backend() interface{} { return n.backend }

// Mknode allocates a node with the given backend, attaches it to
// parent, and — if parent's backend implements ChildAdder — appends
// it to the parent's child list. With a nil parent the node is left
// detached: it has no parent and is linked into no child list.
// Mknode never fails: allocation failure in Go is not a recoverable
// condition the way calloc() returning NULL was in the source, and no
// function in this package reports out-of-memory.
func Mknode(parent *Node, name string, backend interface{}) *Node {
	n := &Node{name: name, parent: parent, backend: backend}
	if parent != nil {
		if adder, ok := parent.backend.(ChildAdder); ok {
			adder.AddChild(parent, n)
		}
	}
	return n
}

// MkRoot allocates an unparented root node: name "", parent nil.
func MkRoot(backend interface{}) *Node {
	return &Node{name: "", backend: backend}
}

// Destroy tears down n: detaches it from its parent, recursively
// destroys children (driven by the backend's ChildLister, see
// virtdir.go), orphans every handle opened against n, runs OnDestroy
// if present, and drops the backend. The caller must hold the VFS
// lock for the whole call.
//
// A read already in flight against n when Destroy runs is unaffected:
// ResolveReader (dispatch.go) captures the node and its Reader
// capability under the same lock before the blocking I/O starts, so
// the two never touch n.backend concurrently. Destroy does not wait
// for that read to finish; a handle's *next* operation after Destroy
// sees h.node == nil and reports a stale handle.
func Destroy(n *Node) {
	if n.parent != nil {
		if remover, ok := n.parent.backend.(ChildRemover); ok {
			remover.RemoveChild(n.parent, n)
		}
	}

	if lister, ok := n.backend.(ChildLister); ok {
		for _, child := range lister.ListChildren(n) {
			Destroy(child)
		}
	}

	for h := n.dirHandles; h != nil; {
		next := h.sibling
		if cd, ok := n.backend.(Closedirer); ok {
			cd.Closedir(n, h)
		}
		h.node = nil
		h.sibling = nil
		h = next
	}
	n.dirHandles = nil

	for h := n.fileHandles; h != nil; {
		next := h.sibling
		if c, ok := n.backend.(Closer); ok {
			c.Close(n, h)
		}
		h.node = nil
		h.sibling = nil
		h = next
	}
	n.fileHandles = nil

	if d, ok := n.backend.(Destroyer); ok {
		d.OnDestroy(n)
	}
	n.backend = nil
	n.parent = nil
}

// linkDirHandle prepends h to n's directory-handle list.
func linkDirHandle(n *Node, h *DirHandle) {
	h.node = n
	h.sibling = n.dirHandles
	n.dirHandles = h
}

func unlinkDirHandle(n *Node, h *DirHandle) {
	if n == nil {
		return
	}
	if n.dirHandles == h {
		n.dirHandles = h.sibling
		h.sibling = nil
		return
	}
	for p := n.dirHandles; p != nil; p = p.sibling {
		if p.sibling == h {
			p.sibling = h.sibling
			h.sibling = nil
			return
		}
	}
}

func linkFileHandle(n *Node, h *FileHandle) {
	h.node = n
	h.sibling = n.fileHandles
	n.fileHandles = h
}

func unlinkFileHandle(n *Node, h *FileHandle) {
	if n == nil {
		return
	}
	if n.fileHandles == h {
		n.fileHandles = h.sibling
		h.sibling = nil
		return
	}
	for p := n.fileHandles; p != nil; p = p.sibling {
		if p.sibling == h {
			p.sibling = h.sibling
			h.sibling = nil
			return
		}
	}
}

// DirHandle is an open directory cursor bound to a node. Backend
// packages store their own iteration state in Cursor.
type DirHandle struct {
	node    *Node
	sibling *DirHandle
	Cursor  interface{}
}

// Node returns the handle's bound node, or nil if the node has been
// destroyed (the handle is orphaned).
func (h *DirHandle) Node() *Node { return h.node }

// FileHandle is an open file cursor bound to a node. Posn is owned
// exclusively by the handle: reads through it are strictly
// sequential.
type FileHandle struct {
	node    *Node
	sibling *FileHandle
	Posn    int64
	eof     bool
	Cursor  interface{}
}

// Node returns the handle's bound node, or nil if orphaned.
func (h *FileHandle) Node() *Node { return h.node }

// Eof reports whether the most recent Read reached the end of the
// file's data.
func (h *FileHandle) Eof() bool { return h.eof }

// SetEOF is called by backend Reader implementations to record
// whether the handle has reached end of file.
func (h *FileHandle) SetEOF(eof bool) { h.eof = eof }
