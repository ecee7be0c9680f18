package gdrom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dcvfs/dcvfs/hostio"
	"github.com/dcvfs/dcvfs/vfsnode"
)

// pollInterval matches the source's CHK_STATUS_INTERVAL, "twice per
// second".
const pollInterval = 500 * time.Millisecond

// spinUpAttempts is the source's retry budget in make_vfsnodes's
// "for(i=0; i<8; i++) if(!(r = exec_cmd(24, NULL))) break;".
const spinUpAttempts = 8

// Monitor watches an OpticalDrive for media presence changes and
// mounts or tears down the whole "gdrom" node under parent in step,
// the way the source's gdrom_thread reacts to mailbox-posted state
// changes from chk_drivestatus by creating or destroying its own
// root variable. Grounded on go-fuse's unionfs/dircache.go
// background-refresh-under-a-lock idiom, generalized from a timer
// callback to a dedicated goroutine plus ticker.
type Monitor struct {
	parent *vfsnode.Node // engine root; "gdrom" is mounted/unmounted under it
	drv    hostio.OpticalDrive
	lock   sync.Locker

	cache *sectorModeCache
	cdxa  bool

	mu       sync.Mutex // guards mounted; oldState is touched only by poll
	mounted  *vfsnode.Node
	oldState hostio.DriveState

	stop chan struct{}
	done chan struct{}
}

// NewMonitor builds a disc monitor that mounts a "gdrom" node under
// parent (normally the engine root) and serializes tree mutation
// against lock, which must be the same lock callers take before
// resolving paths under parent. cdxa selects the CD-XA sector mode
// for data tracks over the plain Mode-1 sector mode, the source's
// "param[1] == 32" drive-status flag.
func NewMonitor(parent *vfsnode.Node, drv hostio.OpticalDrive, lock sync.Locker, cdxa bool) *Monitor {
	return &Monitor{
		parent:   parent,
		drv:      drv,
		lock:     lock,
		cache:    &sectorModeCache{},
		cdxa:     cdxa,
		oldState: -1,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run polls the drive until ctx is done or Close is called. It's
// meant to be run in its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// Close stops Run and waits for it to return.
func (m *Monitor) Close() {
	close(m.stop)
	<-m.done
}

func (m *Monitor) poll(ctx context.Context) {
	state, err := m.drv.State(ctx)
	if err != nil {
		return
	}
	if state == m.oldState {
		return
	}
	m.oldState = state

	if state.Ready() {
		m.mu.Lock()
		already := m.mounted != nil
		m.mu.Unlock()
		if !already {
			m.mountTree(ctx)
		}
	} else {
		m.unmountTree()
	}
}

// mountTree reproduces make_vfsnodes: spin up with retries, fetch
// both session TOCs in parallel, and — only if at least one
// succeeded — mount a fresh "gdrom" node with its session subtrees
// under the global lock.
func (m *Monitor) mountTree(ctx context.Context) {
	spunUp := false
	for i := 0; i < spinUpAttempts; i++ {
		if err := m.drv.SpinUp(ctx); err == nil {
			spunUp = true
			break
		}
	}
	if !spunUp {
		return
	}

	var tocs [2]hostio.TOC
	var tocErrs [2]error
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			t, err := m.drv.ReadTOC(gctx, i)
			tocs[i] = t
			tocErrs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	if tocErrs[0] != nil && tocErrs[1] != nil {
		return
	}

	m.cache.invalidate()

	m.lock.Lock()
	defer m.lock.Unlock()

	gdromRoot := vfsnode.MkVirtDir(m.parent, "gdrom")
	for i := 0; i < 2; i++ {
		if tocErrs[i] != nil {
			continue
		}
		name := fmt.Sprintf("session%d", i+1)
		session := vfsnode.MkVirtDir(gdromRoot, name)
		buildSession(session, tocs[i], m.cdxa, m.drv, m.cache)
	}

	m.mu.Lock()
	m.mounted = gdromRoot
	m.mu.Unlock()
}

// unmountTree reproduces the else branch of gdrom_thread: destroy the
// whole "gdrom" node under the global lock, orphaning any handles
// still open beneath it.
func (m *Monitor) unmountTree() {
	m.mu.Lock()
	node := m.mounted
	m.mounted = nil
	m.mu.Unlock()
	if node == nil {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	vfsnode.Destroy(node)
}
