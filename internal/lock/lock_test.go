package lock_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsonlt/jsonlt-go/internal/lock"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonlt")

	h, err := lock.Acquire(path, nil)
	require.NoError(t, err)
	require.FileExists(t, path+lock.Suffix)

	require.NoError(t, h.Release())
	require.NoFileExists(t, path+lock.Suffix)
}

func TestAcquireNonBlockingFailsWhenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonlt")

	h, err := lock.Acquire(path, nil)
	require.NoError(t, err)
	defer h.Release()

	zero := time.Duration(0)
	_, err = lock.Acquire(path, &zero)
	require.Error(t, err)
}

func TestAcquireBoundedTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonlt")

	h, err := lock.Acquire(path, nil)
	require.NoError(t, err)
	defer h.Release()

	timeout := 20 * time.Millisecond
	_, err = lock.Acquire(path, &timeout)
	require.Error(t, err)
}

func TestAcquireSucceedsOnceReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonlt")

	h, err := lock.Acquire(path, nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(15 * time.Millisecond)
		_ = h.Release()
	}()

	timeout := 500 * time.Millisecond
	h2, err := lock.Acquire(path, &timeout)
	require.NoError(t, err)
	require.NoError(t, h2.Release())
}

func TestReleaseNilHandleIsNoOp(t *testing.T) {
	var h *lock.Handle
	require.NoError(t, h.Release())
}

func TestReleaseAlreadyRemovedIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonlt")
	h, err := lock.Acquire(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path+lock.Suffix))
	require.NoError(t, h.Release())
}
