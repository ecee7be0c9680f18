package hostio

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// ToErrno converts a host I/O error into a POSIX code: a distinguished
// no-medium or stale-drive condition where the host error says so, EIO
// otherwise. This mirrors gdfs_errno_to_errno in the original driver
// source, which maps the host driver's own error codes onto exactly
// these three outcomes.
func ToErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, unix.ENOMEDIUM):
		return syscall.ENOMEDIUM
	case errors.Is(err, unix.ESTALE):
		return syscall.ESTALE
	default:
		return syscall.EIO
	}
}
