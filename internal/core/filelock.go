package core

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

const graphLockName = ".graph.lock"

// lockGraph acquires the exclusive structural lock for the base directory.
// Structural mutations (parent and depends_on edits, decomposition) take
// this lock so validate-then-commit runs against a stable graph. It returns
// an unlock function that must be called to release the lock.
func lockGraph(basePath string) (unlock func() error, err error) {
	path := filepath.Join(basePath, graphLockName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening graph lock: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring graph lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}

// withGraphLock runs fn while holding the structural lock.
func withGraphLock(basePath string, fn func() error) error {
	unlock, err := lockGraph(basePath)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
