//go:build unix

package settings

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an flock on path, creating it if needed, and returns the
// function that releases it.
func lockFile(path string, exclusive bool) (func(), error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}

func accessWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
