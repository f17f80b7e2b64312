// Package lock implements advisory exclusive locking for JSONLT table
// files (spec §4.8), as a sidecar lock file created with O_EXCL. This
// keeps locking portable across platforms without reaching for
// platform-specific flock syscalls.
package lock

import (
	"fmt"
	"os"
	"time"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

const pollInterval = 5 * time.Millisecond

// Suffix is appended to a table's path to name its sidecar lock file.
const Suffix = ".lock"

// Handle represents a held lock. Release must be called exactly once.
type Handle struct {
	path string
}

// Acquire takes the exclusive lock guarding path, per spec §4.8 timeout
// semantics:
//
//	timeout == nil:       block indefinitely until the lock is free
//	*timeout == 0:        try once, fail immediately if held
//	*timeout > 0:         poll until the lock is free or the duration elapses
func Acquire(path string, timeout *time.Duration) (*Handle, error) {
	lockPath := path + Suffix
	deadline, bounded := deadlineFor(timeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return &Handle{path: lockPath}, nil
		}
		if !os.IsExist(err) {
			return nil, jsonlterr.WrapLockError(fmt.Sprintf("cannot create lock file %q", lockPath), err)
		}
		if timeout != nil && *timeout == 0 {
			return nil, jsonlterr.NewLockError(fmt.Sprintf("table %q is locked", path))
		}
		if bounded && time.Now().After(deadline) {
			return nil, jsonlterr.NewLockError(fmt.Sprintf("timed out waiting for lock on table %q", path))
		}
		time.Sleep(pollInterval)
	}
}

func deadlineFor(timeout *time.Duration) (time.Time, bool) {
	if timeout == nil || *timeout <= 0 {
		return time.Time{}, false
	}
	return time.Now().Add(*timeout), true
}

// Release drops the lock by removing the sidecar lock file. A nil handle,
// or a lock file that no longer exists, is not an error. Release does not
// check ownership: calling it again after another holder has acquired the
// lock removes that holder's lock file.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	err := os.Remove(h.path)
	if err != nil && !os.IsNotExist(err) {
		return jsonlterr.WrapLockError(fmt.Sprintf("cannot release lock file %q", h.path), err)
	}
	return nil
}
