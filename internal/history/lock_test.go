package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	store := filepath.Join(t.TempDir(), "history.json")
	now := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)

	lock, err := Acquire(store, "run-1", now)
	require.NoError(t, err)

	_, err = os.Stat(store + ".lock")
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	_, err = os.Stat(store + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestSecondAcquireFailsFast(t *testing.T) {
	store := filepath.Join(t.TempDir(), "history.json")
	now := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)

	lock, err := Acquire(store, "run-1", now)
	require.NoError(t, err)
	defer lock.Release()

	_, err = Acquire(store, "run-2", now.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, IsLockHeld(err))

	var held *LockHeldError
	require.True(t, errors.As(err, &held))
	assert.Equal(t, "run-1", held.Owner)
	assert.Equal(t, os.Getpid(), held.PID)
	assert.True(t, held.AcquiredAt.Equal(now))
	assert.Contains(t, held.Error(), "run-1")
	assert.Contains(t, held.Error(), held.Path)
}

func TestReleaseAllowsReacquire(t *testing.T) {
	store := filepath.Join(t.TempDir(), "history.json")
	now := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)

	lock, err := Acquire(store, "run-1", now)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	lock2, err := Acquire(store, "run-2", now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestAcquireCreatesParentDirectory(t *testing.T) {
	store := filepath.Join(t.TempDir(), "deep", "nested", "history.json")
	now := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)

	lock, err := Acquire(store, "run-1", now)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestIsLockHeldUnwraps(t *testing.T) {
	inner := &LockHeldError{Path: "/tmp/h.lock"}
	wrapped := fmt.Errorf("starting run: %w", inner)
	assert.True(t, IsLockHeld(wrapped))
	assert.False(t, IsLockHeld(errors.New("other")))
}
