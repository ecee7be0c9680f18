package dcvfs

import (
	"context"
	"sync"

	"github.com/dcvfs/dcvfs/flashfs"
	"github.com/dcvfs/dcvfs/gdrom"
	"github.com/dcvfs/dcvfs/hostio"
	"github.com/dcvfs/dcvfs/romfs"
	"github.com/dcvfs/dcvfs/vfsnode"
)

// RomSize is the fixed size of the ROM region mounted at /rom: a
// 2 MiB region at a fixed host address.
const RomSize = 2 * 1024 * 1024

// Config describes the host collaborators an Engine is built from.
// FlashDevice and OpticalDrive are the out-of-process primitives this
// module puts explicitly out of scope; both may be nil, in which case
// /flash stays empty and /gdrom never appears.
type Config struct {
	// ROM is the fixed-size in-memory region mounted at /rom. It must
	// be exactly RomSize bytes; a shorter or longer slice is a caller
	// error the constructor reports rather than silently truncating.
	ROM []byte

	FlashDevice hostio.FlashDevice

	OpticalDrive hostio.OpticalDrive
	// CDXA selects the CD-XA sector mode for data tracks over the
	// plain Mode-1 sector mode (the source's "param[1] == 32" flag
	// read back from the drive's status at mount time).
	CDXA bool
}

// Engine owns the mount tree and the global VFS lock: exactly one
// goroutine mutates the tree at a time, and readers are also expected
// to acquire the same lock for the duration of a single call. It
// replaces the source's process-wide root pointer with an explicitly
// constructed object instead of global state.
type Engine struct {
	mu   sync.Mutex
	root *vfsnode.Node

	monitor    *gdrom.Monitor
	cancelMon  context.CancelFunc
}

// NewEngine builds the mount tree: /rom (if cfg.ROM is set), /flash
// (enumerated against cfg.FlashDevice), and, if cfg.OpticalDrive is
// set, starts the background disc monitor that mounts and unmounts
// /gdrom as media comes and goes.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ROM != nil && len(cfg.ROM) != RomSize {
		return nil, errConfig("ROM region must be exactly RomSize bytes")
	}

	e := &Engine{root: vfsnode.MkRoot(&vfsnode.VirtDir{})}

	if cfg.ROM != nil {
		romfs.Mount(e.root, "rom", cfg.ROM)
	}

	flashRoot := vfsnode.MkVirtDir(e.root, "flash")
	if cfg.FlashDevice != nil {
		flashfs.ProbeAndMountAll(flashRoot, cfg.FlashDevice)
	}

	if cfg.OpticalDrive != nil {
		e.monitor = gdrom.NewMonitor(e.root, cfg.OpticalDrive, &e.mu, cfg.CDXA)
		ctx, cancel := context.WithCancel(context.Background())
		e.cancelMon = cancel
		go e.monitor.Run(ctx)
	}

	return e, nil
}

// Close stops the disc monitor, if running. It does not tear down the
// mount tree itself — that happens when the Engine is garbage
// collected; there is no explicit shutdown path for the static /rom
// and /flash subtrees.
func (e *Engine) Close() {
	if e.cancelMon != nil {
		e.cancelMon()
	}
	if e.monitor != nil {
		e.monitor.Close()
	}
}

type errConfig string

func (e errConfig) Error() string { return "dcvfs: " + string(e) }
