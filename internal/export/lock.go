package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"sdpix/internal/core"
)

// LockInfo is the metadata stored in a lock file.
type LockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// FileLock is an exclusive advisory lock guarding an artifact directory.
type FileLock struct {
	path   string
	runID  string
	file   *os.File
	logger core.Logger
}

// NewFileLock creates a lock at path owned by runID.
func NewFileLock(path, runID string, logger core.Logger) *FileLock {
	return &FileLock{path: path, runID: runID, logger: logger}
}

// Acquire takes the lock without blocking. A lock whose recorded owner
// process no longer exists is taken over once.
func (l *FileLock) Acquire() error {
	return l.acquire(true)
}

func (l *FileLock) acquire(takeOver bool) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return &core.LockError{Operation: "acquire", Message: "open lock file", Err: err}
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			l.logger.Warn("failed to close lock file", "path", l.path, "error", closeErr)
		}

		existing, readErr := l.readLockInfo()
		if readErr != nil {
			return &core.LockError{Operation: "acquire", Message: "lock is held", Err: err}
		}
		if takeOver && !processAlive(existing.PID) {
			l.logger.Warn("taking over lock of dead process", "path", l.path, "pid", existing.PID, "run", existing.RunID)
			if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
				return &core.LockError{Operation: "acquire", Message: "remove dead lock", Err: removeErr}
			}
			return l.acquire(false)
		}
		age := time.Since(existing.Timestamp).Round(time.Second)
		return &core.LockError{
			Operation: "acquire",
			Message:   fmt.Sprintf("artifacts locked by %s (PID %d, %v ago)", existing.RunID, existing.PID, age),
			Err:       err,
		}
	}

	l.file = file

	hostname, _ := os.Hostname()
	data, err := json.MarshalIndent(LockInfo{
		PID:       os.Getpid(),
		Hostname:  hostname,
		RunID:     l.runID,
		Timestamp: time.Now(),
	}, "", "  ")
	if err != nil {
		return &core.LockError{Operation: "acquire", Message: "encode lock metadata", Err: err}
	}
	if err := file.Truncate(0); err != nil {
		return &core.LockError{Operation: "acquire", Message: "truncate lock file", Err: err}
	}
	if _, err := file.Seek(0, 0); err != nil {
		return &core.LockError{Operation: "acquire", Message: "seek lock file", Err: err}
	}
	if _, err := file.Write(data); err != nil {
		return &core.LockError{Operation: "acquire", Message: "write lock metadata", Err: err}
	}
	return nil
}

// Release drops the lock and removes the lock file.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.logger.Warn("failed to release flock", "path", l.path, "error", err)
	}
	if err := l.file.Close(); err != nil {
		l.logger.Warn("failed to close lock file", "path", l.path, "error", err)
	}
	l.file = nil

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return &core.LockError{Operation: "release", Message: "remove lock file", Err: err}
	}
	return nil
}

func (l *FileLock) readLockInfo() (*LockInfo, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 probes liveness.
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
