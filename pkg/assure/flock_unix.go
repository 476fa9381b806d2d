//go:build !windows

package assure

import "golang.org/x/sys/unix"

// flockLock acquires an exclusive file lock, blocking until available.
func flockLock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX)
}

// flockUnlock releases the file lock.
func flockUnlock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
