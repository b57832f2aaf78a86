//go:build !unix

package lockfile

import "os"

// flockExclusiveNonBlock is a no-op where flock is unavailable; recipebox
// is a single-user tool and the lock is advisory.
func flockExclusiveNonBlock(f *os.File) error {
	return nil
}

func flockUnlock(f *os.File) error {
	return nil
}
