// Package lockfile holds an advisory lock on the data directory so only one
// recipebox process writes the catalog at a time.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileName is the lock file created inside the data directory.
const FileName = ".lock"

// ErrLockBusy is returned when another process holds the lock.
var ErrLockBusy = errors.New("data directory is locked by another process")

// Lock is a held data-directory lock.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive non-blocking lock on dir/.lock, creating dir
// and the file as needed. It returns ErrLockBusy if the lock is held. The
// holder's PID is written into the file for diagnostics.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := flockExclusiveNonBlock(f); err != nil {
		f.Close()
		if errors.Is(err, ErrLockBusy) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	// PID is informational only; failing to record it does not release the lock.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file. Release is idempotent and safe on
// a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if err := flockUnlock(f); err != nil {
		f.Close()
		return fmt.Errorf("unlocking: %w", err)
	}
	return f.Close()
}
