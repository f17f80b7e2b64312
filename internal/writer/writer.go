// Package writer appends and rewrites JSONLT file contents through the
// fsx filesystem seam (spec §4.7). Both AppendLines and Rewrite expect
// their caller to already hold the table's exclusive lock; neither
// function acquires one itself, so a caller never deadlocks against its
// own lock while writing.
package writer

import (
	"github.com/jsonlt/jsonlt-go/internal/fsx"
	"github.com/jsonlt/jsonlt-go/internal/header"
)

// AppendLines opens path (creating it if absent), seeks to its end, and
// writes lines -- each a canonical JSON object already serialized by the
// caller -- one per line. The caller must already hold path's table-level
// exclusive lock (see internal/lock) for the whole refresh-then-append
// sequence this is part of; AppendLines does no locking of its own.
func AppendLines(fs fsx.FileSystem, path string, lines []string) error {
	stats, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if err := fs.EnsureParentDir(path); err != nil {
		return err
	}

	mode := fsx.ModeReadWrite
	if !stats.Exists {
		mode = fsx.ModeCreateExclusive
	}

	f, err := fs.OpenLocked(path, mode)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(0, 2); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := f.Write([]byte(line + "\n")); err != nil {
			return err
		}
	}
	return f.Sync()
}

// Rewrite atomically replaces path's entire contents with header (if
// present) followed by lines, used for compaction and header-only
// rewrites. It does not itself take the exclusive lock; callers that
// must coordinate with concurrent appenders hold one around Rewrite.
func Rewrite(fs fsx.FileSystem, path string, h *header.Header, lines []string) error {
	var all []string
	if h != nil {
		headerLine, err := header.Serialize(*h)
		if err != nil {
			return err
		}
		all = append(all, headerLine)
	}
	all = append(all, lines...)
	return fs.AtomicReplace(path, all)
}
