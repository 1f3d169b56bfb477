package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Lock is the advisory single-writer lock over a history document.
// Acquire fails fast when another run holds it; it never blocks and
// never steals. A lock left behind by a crashed run must be removed by
// the operator; the error text names the file.
type Lock struct {
	path string
}

// lockInfo is written into the lock file so a competing runner or an
// operator can see who holds the store.
type lockInfo struct {
	Owner      string    `json:"owner"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Acquire takes the lock beside the history document at storePath.
// owner identifies the run (the run id); now is recorded for
// diagnostics. Returns LockHeldError when the lock file already
// exists.
func Acquire(storePath, owner string, now time.Time) (*Lock, error) {
	path := storePath + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			held := readLockInfo(path)
			return nil, &LockHeldError{
				Path:       path,
				Owner:      held.Owner,
				PID:        held.PID,
				AcquiredAt: held.AcquiredAt,
			}
		}
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}

	data, err := json.Marshal(lockInfo{Owner: owner, PID: os.Getpid(), AcquiredAt: now.UTC()})
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("encode history lock: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write history lock: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close history lock: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file. Call exactly once per acquired lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("release history lock: %w", err)
	}
	return nil
}

// readLockInfo decodes the holder recorded in an existing lock file.
// Best effort: an unreadable file still produces a useful error, just
// without the holder details.
func readLockInfo(path string) lockInfo {
	var info lockInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info
	}
	_ = json.Unmarshal(data, &info)
	return info
}
