//go:build !unix

package settings

import "os"

// lockFile is a no-op where flock is unavailable.
func lockFile(path string, _ bool) (func(), error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}
	return func() {}, nil
}

func accessWritable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().Perm()&0o200 != 0
}
