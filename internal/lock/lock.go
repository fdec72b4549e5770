// Package lock provides file-based locking around read-modify-write cycles
// on shared kubegen state such as the version index.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when another holder has the lock.
var ErrLocked = errors.New("lock is held by another process")

// pollInterval is how often Wait retries a held lock.
const pollInterval = 25 * time.Millisecond

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a new lock for the given operation in dir.
func New(dir, operation string) *Lock {
	return &Lock{
		path: filepath.Join(dir, ".locks", operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire attempts to acquire the lock without blocking.
// Returns an error wrapping ErrLocked if the lock is already held.
func (l *Lock) Acquire() error {
	if l.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("another %s operation is already running: %w", l.operation(), ErrLocked)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID is informational only.
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Wait blocks until the lock is acquired or ctx is done.
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
			return fmt.Errorf("waiting for %s lock: %w", l.operation(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release releases the lock. The lock file itself is left in place: removing
// it would let a waiter that already opened the old inode and a newcomer that
// creates a fresh file both believe they hold the lock.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

func (l *Lock) operation() string {
	return strings.TrimSuffix(filepath.Base(l.path), ".lock")
}

// WithLock executes fn while holding the lock, waiting for other holders
// to finish first. The lock is released when fn returns.
func WithLock(ctx context.Context, dir, operation string, fn func() error) error {
	lock := New(dir, operation)
	if err := lock.Wait(ctx); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
