// Package lock provides file-based locking for shipwright state files.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// pollInterval is how often Wait retries a held lock.
const pollInterval = 50 * time.Millisecond

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a lock named name inside dir. Nothing is touched on disk
// until Acquire.
func New(dir, name string) *Lock {
	return &Lock{
		path: filepath.Join(dir, name+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire attempts to take the lock without blocking.
// Returns ErrLocked if it is already held.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		if errors.Is(err, ErrLocked) {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(filepath.Base(l.path), ".lock"), ErrLocked)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// Write PID to lock file for debugging
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Wait retries Acquire until it succeeds or ctx is done.
func (l *Lock) Wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		err := l.Acquire()
		if err == nil || !errors.Is(err, ErrLocked) {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for lock: %w", errors.Join(ctx.Err(), err))
		case <-ticker.C:
		}
	}
}

// Release releases the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unlockFile(l.file)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the named lock in dir, waiting for it
// until ctx is done.
func WithLock(ctx context.Context, dir, name string, fn func() error) error {
	lock := New(dir, name)
	if err := lock.Wait(ctx); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
