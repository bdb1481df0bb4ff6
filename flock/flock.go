// Package flock guards a persist directory against concurrent writers
// using an advisory file lock.
package flock

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/gofrs/flock"
)

// FileName is the lock file created inside a persist directory.
const FileName = "spyder.lock"

// retryDelay is how often a blocked Acquire retries the lock.
const retryDelay = 100 * time.Millisecond

// Lock is the exclusive writer lock of a persist directory.
type Lock struct {
	fl *flock.Flock
}

// New returns the writer lock for dir. The lock is not held until Acquire.
func New(dir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(dir, FileName))}
}

// TryAcquire takes the lock without waiting.
// Returns ESTORE if another process holds it.
func (l *Lock) TryAcquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "lock %s", l.fl.Path())
	}
	if !ok {
		return spyder.Errorf(spyder.ESTORE, "%s is locked by another ingestion", l.fl.Path())
	}
	return nil
}

// Acquire waits for the lock until ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "lock %s", l.fl.Path())
	}
	if !ok {
		return spyder.Errorf(spyder.ESTORE, "%s is locked by another ingestion", l.fl.Path())
	}
	return nil
}

// Release unlocks the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "unlock %s", l.fl.Path())
	}
	return nil
}
