// Package dcvfs is a read-only virtual filesystem unifying an
// in-memory ROM region, host flash partitions, and optical-disc
// tracks under one POSIX-shaped pathname space: stat,
// opendir/readdir/closedir, open/read/close, chdir/getcwd.
//
// The tree itself lives in vfsnode; vfspath normalizes and resolves
// pathnames against it; romfs, flashfs, and gdrom supply the three
// leaf kinds. This package assembles an Engine from those pieces and
// exposes per-caller Sessions over it.
package dcvfs
