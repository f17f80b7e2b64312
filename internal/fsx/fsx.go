// Package fsx is the filesystem collaborator boundary JSONLT's reader,
// writer, and table layers are built on (spec §9 supplement, modelled on
// the original's FileSystem protocol). Real I/O goes through OSFileSystem;
// tests substitute MemFileSystem.
package fsx

import (
	"io"
	"time"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

// OpenMode selects how OpenLocked opens its file.
type OpenMode int

const (
	// ModeReadWrite opens an existing file for read-modify-write. It fails
	// if the file does not exist.
	ModeReadWrite OpenMode = iota
	// ModeCreateExclusive creates a new file, failing if one already
	// exists at path.
	ModeCreateExclusive
)

// Stats mirrors a file's observable signature: modification time and
// size, used for the cache-invalidation check (spec §4.9).
type Stats struct {
	Mtime  time.Time
	Size   int64
	Exists bool
}

// LockedFile is a file handle held under an exclusive lock, readable,
// writable, seekable, and flushable.
type LockedFile interface {
	io.Reader
	io.Writer
	io.Seeker
	Sync() error
	Close() error
}

// FileSystem is the seam between JSONLT's core logic and actual file
// I/O. Every method reports failure as a jsonlterr error (FileError, or
// LimitError from ReadBytes on a size overrun), never a bare stdlib error.
//
// FileSystem does not itself provide mutual exclusion: OpenLocked's name
// refers to the file it hands back being suitable for the caller's own
// locked section, not to FileSystem taking any lock of its own. The
// table-level exclusive lock (spec §4.8, internal/lock) is acquired
// exactly once per mutation, by Table/Transaction, before any FileSystem
// call that touches the file; FileSystem must never acquire that same
// lock again underneath them, or a table mutation would deadlock against
// its own lock.
type FileSystem interface {
	// Stat returns path's signature. A non-existent path is not an
	// error: Stats.Exists is false.
	Stat(path string) (Stats, error)

	// ReadBytes reads path's full contents. If maxSize is >= 0 and the
	// file exceeds it, ReadBytes fails with a LimitError rather than
	// reading the oversized content.
	ReadBytes(path string, maxSize int64) ([]byte, error)

	// EnsureParentDir creates path's parent directory (and any missing
	// ancestors), if it does not already exist.
	EnsureParentDir(path string) error

	// OpenLocked opens path under mode for the caller's own locked
	// section -- the caller must already hold the table's exclusive
	// lock. It performs no locking itself.
	OpenLocked(path string, mode OpenMode) (LockedFile, error)

	// AtomicReplace rewrites path's full contents to lines (each
	// suffixed with "\n"), visible to other processes either wholly or
	// not at all.
	AtomicReplace(path string, lines []string) error
}

func fileError(msg string, cause error) error {
	return jsonlterr.WrapFileError(msg, cause)
}
