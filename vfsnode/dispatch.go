package vfsnode

import "syscall"

// Stat dispatches to the node's Stater, or syscall.ENOSYS if the
// backend doesn't implement one.
func Stat(n *Node) (StatInfo, syscall.Errno) {
	if s, ok := n.backend.(Stater); ok {
		return s.Stat(n)
	}
	return StatInfo{}, syscall.ENOSYS
}

// Find dispatches one resolver step to n's Finder. A leaf node (no
// Finder) reports ok=false so the resolver stops there.
func Find(n *Node, path string) (child *Node, tailOffset int, ok bool) {
	if f, ok := n.backend.(Finder); ok {
		return f.Find(n, path)
	}
	return nil, 0, false
}

// Opendir allocates a directory handle against n and seats its
// cursor via the backend's Opendirer. On failure the handle is
// discarded and never linked.
func Opendir(n *Node, tail string) (*DirHandle, syscall.Errno) {
	od, ok := n.backend.(Opendirer)
	if !ok {
		return nil, syscall.ENOTDIR
	}
	h := &DirHandle{}
	if errno := od.Opendir(n, h, tail); errno != OK {
		return nil, errno
	}
	linkDirHandle(n, h)
	return h, OK
}

// Readdir advances h and yields its next entry, or ok=false at end of
// stream. A handle orphaned by a concurrent Destroy reports
// syscall.ESTALE.
func Readdir(h *DirHandle) (Dirent, bool, syscall.Errno) {
	if h == nil {
		return Dirent{}, false, syscall.EBADF
	}
	n := h.node
	if n == nil {
		return Dirent{}, false, syscall.ESTALE
	}
	rd, ok := n.backend.(Readdirer)
	if !ok {
		return Dirent{}, false, syscall.ENOSYS
	}
	return rd.Readdir(n, h)
}

// Closedir unlinks h from its node's handle list (if not already
// orphaned), invokes the backend's Closedirer if present, and frees
// h. Closing an already-orphaned handle succeeds with no side effect;
// closing a nil handle reports syscall.EBADF.
func Closedir(h *DirHandle) syscall.Errno {
	if h == nil {
		return syscall.EBADF
	}
	n := h.node
	if n != nil {
		if cd, ok := n.backend.(Closedirer); ok {
			cd.Closedir(n, h)
		}
		unlinkDirHandle(n, h)
	}
	h.node = nil
	return OK
}

// Open allocates a file handle against n and validates it via the
// backend's Opener. write requests always fail with syscall.EROFS on
// the built-in kinds.
func Open(n *Node, tail string, write bool) (*FileHandle, syscall.Errno) {
	op, ok := n.backend.(Opener)
	if !ok {
		return nil, syscall.ENOSYS
	}
	h := &FileHandle{}
	if errno := op.Open(n, h, tail, write); errno != OK {
		return nil, errno
	}
	linkFileHandle(n, h)
	return h, OK
}

// Read performs one sequential, element-counted read through h (see
// Reader), advancing h.Posn by the number of bytes actually copied.
// elemSize must be > 0; elemCount may be 0 (always yields count 0).
func Read(h *FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno) {
	if h == nil {
		return 0, syscall.EBADF
	}
	n := h.node
	if n == nil {
		return 0, syscall.ESTALE
	}
	if elemSize <= 0 {
		return 0, syscall.EINVAL
	}
	rd, ok := n.backend.(Reader)
	if !ok {
		return 0, syscall.ENOSYS
	}
	return rd.Read(n, h, buf, elemSize, elemCount)
}

// ResolveReader validates h and returns its node together with the
// node's Reader capability. A caller that wants to perform a blocking
// read without holding the VFS lock for its whole duration calls
// ResolveReader while the lock is held, releases the lock, then calls
// the returned Reader's Read directly. Because the node and backend
// are both captured here under the lock, a concurrent Destroy racing
// on n.backend afterward can't corrupt the in-flight call — it only
// means the handle is orphaned by the time the caller's next
// operation checks it.
func ResolveReader(h *FileHandle) (*Node, Reader, syscall.Errno) {
	if h == nil {
		return nil, nil, syscall.EBADF
	}
	n := h.node
	if n == nil {
		return nil, nil, syscall.ESTALE
	}
	rd, ok := n.backend.(Reader)
	if !ok {
		return nil, nil, syscall.ENOSYS
	}
	return n, rd, OK
}

// Close unlinks h from its node's handle list (if not already
// orphaned), invokes the backend's Closer if present, and frees h.
func Close(h *FileHandle) syscall.Errno {
	if h == nil {
		return syscall.EBADF
	}
	n := h.node
	if n != nil {
		if c, ok := n.backend.(Closer); ok {
			c.Close(n, h)
		}
		unlinkFileHandle(n, h)
	}
	h.node = nil
	return OK
}
