package history

import (
	"errors"
	"fmt"
	"time"
)

// LockHeldError reports that another run holds the advisory lock.
type LockHeldError struct {
	Path       string
	Owner      string
	PID        int
	AcquiredAt time.Time
}

func (e *LockHeldError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("history locked by run %s (pid %d) since %s; remove %s if that run is dead",
			e.Owner, e.PID, e.AcquiredAt.Format(time.RFC3339), e.Path)
	}
	return fmt.Sprintf("history locked: %s", e.Path)
}

// IsLockHeld reports whether err is a LockHeldError.
// Uses errors.As to handle wrapped errors.
func IsLockHeld(err error) bool {
	var le *LockHeldError
	return errors.As(err, &le)
}

// DecodeError reports an unreadable or internally inconsistent history
// document.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("history document %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsCorrupt reports whether err is a DecodeError.
// Uses errors.As to handle wrapped errors.
func IsCorrupt(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
