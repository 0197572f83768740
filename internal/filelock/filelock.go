// Package filelock provides advisory file locking and atomic writes, so two
// todoscan runs never interleave entries in the same todo file and the
// configuration file is never observed half-written.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("file is locked by another todoscan run")

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// LockPath returns the lock file guarding target.
func LockPath(target string) string {
	return target + ".lock"
}

// Acquire takes the lock guarding target without blocking. It returns
// ErrLocked when the lock is already held.
func Acquire(target string) (*FileLock, error) {
	lock := NewFileLock(LockPath(target))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrLocked, target)
	}
	return lock, nil
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
// Returns an error if the lock cannot be acquired.
func (fl *FileLock) Lock() error {
	err := fl.flock.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	err := fl.flock.Unlock()
	if err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Release unlocks and removes the lock file.
func (fl *FileLock) Release() error {
	if err := fl.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(fl.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to a file atomically using a temp file and rename strategy.
// Readers never see partial writes, even if the write is interrupted.
//
// The process:
// 1. Create a temporary file in the same directory as the target
// 2. Write content to the temporary file
// 3. Rename the temporary file to the target path (atomic operation)
//
// If the operation fails at any point, the original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed; nothing left to clean up
	tempFile = nil

	return nil
}
