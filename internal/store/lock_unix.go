//go:build unix

// Single-writer locking, grounded on jinterlante1206-AleutianLocal's
// services/trace/lock package (syscall.Flock-based FileLocker),
// narrowed from that package's advisory stale-lock/TTL machinery to
// the one operation spec.md §4.3 asks for: hold an exclusive lock for
// the duration of one write transaction. Unlike that package's
// non-blocking Lock (which reports ErrFileLocked immediately), this
// blocks until the previous writer releases, since the spec models
// writers as serialized, not mutually rejecting.
package store

import (
	"fmt"
	"os"
	"syscall"
)

// acquireWriteLock opens (creating if absent) the store's lock file
// and blocks until an exclusive lock is held. The returned func
// releases the lock and closes the file; callers must defer it.
func (s *Store) acquireWriteLock() (func() error, error) {
	if s.lockPath == "" {
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open lock file %s: %w", s.lockPath, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: lock %s: %w", s.lockPath, err)
	}
	return func() error {
		unlockErr := syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
