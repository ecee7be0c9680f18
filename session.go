package dcvfs

import (
	"syscall"

	"github.com/dcvfs/dcvfs/vfspath"
	"github.com/dcvfs/dcvfs/vfsnode"
)

// Session is a per-caller handle onto an Engine's mount tree, holding
// its own working directory. Every method that touches the mount tree
// or a handle's node binding acquires the engine's VFS lock for the
// duration of the call, except Read, which releases it around the
// blocking leaf I/O. CloseFS, Eof, Getcwd and the always-failing
// mutating methods take no lock.
type Session struct {
	engine *Engine
	cwd    string
}

// OpenFS starts a session rooted at "/".
func (e *Engine) OpenFS() *Session {
	return &Session{engine: e, cwd: "/"}
}

// CloseFS ends the session. It has no tree-level effect: a session
// holds no resources of its own beyond its cwd string and whatever
// handles the caller opened (and is responsible for closing).
func (s *Session) CloseFS() {}

// resolve normalizes path against the session's cwd and walks the
// tree, returning the deepest matched node and the unconsumed tail of
// the absolute path.
func (s *Session) resolve(path string) (node *vfsnode.Node, tail string) {
	abs := vfspath.Join(s.cwd, path)
	n, off := vfspath.Resolve(s.engine.root, abs)
	return n, abs[off:]
}

// Stat resolves path and reports its kind and size.
func (s *Session) Stat(path string) (vfsnode.StatInfo, syscall.Errno) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	n, tail := s.resolve(path)
	if tail != "" {
		return vfsnode.StatInfo{}, syscall.ENOENT
	}
	return vfsnode.Stat(n)
}

// Opendir resolves path and opens a directory handle on it.
func (s *Session) Opendir(path string) (*vfsnode.DirHandle, syscall.Errno) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	n, tail := s.resolve(path)
	return vfsnode.Opendir(n, tail)
}

// Readdir yields h's next entry, or ok=false at end of stream.
func (s *Session) Readdir(h *vfsnode.DirHandle) (vfsnode.Dirent, bool, syscall.Errno) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return vfsnode.Readdir(h)
}

// Closedir closes a directory handle.
func (s *Session) Closedir(h *vfsnode.DirHandle) syscall.Errno {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return vfsnode.Closedir(h)
}

// Open resolves path and opens a file handle on it. write is always
// rejected with EROFS by the built-in leaf kinds.
func (s *Session) Open(path string, write bool) (*vfsnode.FileHandle, syscall.Errno) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	n, tail := s.resolve(path)
	return vfsnode.Open(n, tail, write)
}

// Read performs one sequential read through h. The VFS lock is held
// only long enough to resolve h's node and its Reader capability; the
// blocking leaf I/O itself runs unlocked.
func (s *Session) Read(h *vfsnode.FileHandle, buf []byte, elemSize, elemCount int) (int, syscall.Errno) {
	s.engine.mu.Lock()
	n, rd, errno := vfsnode.ResolveReader(h)
	s.engine.mu.Unlock()
	if errno != vfsnode.OK {
		return 0, errno
	}

	return rd.Read(n, h, buf, elemSize, elemCount)
}

// Eof reports whether h's most recent Read reached end of file.
func (s *Session) Eof(h *vfsnode.FileHandle) bool {
	return h.Eof()
}

// Close closes a file handle.
func (s *Session) Close(h *vfsnode.FileHandle) syscall.Errno {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return vfsnode.Close(h)
}

// Chdir resolves path, requires it to be a directory, and makes it
// the session's new cwd.
func (s *Session) Chdir(path string) syscall.Errno {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	n, tail := s.resolve(path)
	if tail != "" {
		return syscall.ENOENT
	}
	info, errno := vfsnode.Stat(n)
	if errno != vfsnode.OK {
		return errno
	}
	if !info.IsDir {
		return syscall.ENOTDIR
	}
	s.cwd = vfspath.Join(s.cwd, path)
	return vfsnode.OK
}

// Getcwd returns the session's current working directory.
func (s *Session) Getcwd() string {
	return s.cwd
}

// Write always fails: the system is read-only.
func (s *Session) Write(h *vfsnode.FileHandle, buf []byte) (int, syscall.Errno) {
	return 0, syscall.EROFS
}

// Mkdir always fails: unsupported.
func (s *Session) Mkdir(path string) syscall.Errno { return syscall.ENOSYS }

// Rmdir always fails: unsupported.
func (s *Session) Rmdir(path string) syscall.Errno { return syscall.ENOSYS }

// Rename always fails: unsupported.
func (s *Session) Rename(oldPath, newPath string) syscall.Errno { return syscall.ENOSYS }

// Remove always fails: unsupported.
func (s *Session) Remove(path string) syscall.Errno { return syscall.ENOSYS }
