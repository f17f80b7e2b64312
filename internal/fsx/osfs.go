package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

// OSFileSystem is the production FileSystem, backed by the host's real
// file I/O.
type OSFileSystem struct{}

// NewOS returns the real, OS-backed FileSystem.
func NewOS() *OSFileSystem { return &OSFileSystem{} }

var _ FileSystem = (*OSFileSystem)(nil)

func (OSFileSystem) Stat(path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, fileError(fmt.Sprintf("cannot stat %q", path), err)
	}
	return Stats{Mtime: info.ModTime(), Size: info.Size(), Exists: true}, nil
}

func (OSFileSystem) ReadBytes(path string, maxSize int64) ([]byte, error) {
	if maxSize >= 0 {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fileError(fmt.Sprintf("file not found: %q", path), err)
			}
			return nil, fileError(fmt.Sprintf("cannot stat %q", path), err)
		}
		if info.Size() > maxSize {
			return nil, jsonlterr.NewLimitError(fmt.Sprintf("file %q has size %d, exceeding the maximum of %d", path, info.Size(), maxSize))
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(fmt.Sprintf("cannot read %q", path), err)
	}
	return b, nil
}

func (OSFileSystem) EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileError(fmt.Sprintf("cannot create directory %q", dir), err)
	}
	return nil
}

type osLockedFile struct {
	f *os.File
}

func (l *osLockedFile) Read(p []byte) (int, error)                  { return l.f.Read(p) }
func (l *osLockedFile) Write(p []byte) (int, error)                 { return l.f.Write(p) }
func (l *osLockedFile) Seek(offset int64, whence int) (int64, error) { return l.f.Seek(offset, whence) }
func (l *osLockedFile) Sync() error                                  { return l.f.Sync() }

func (l *osLockedFile) Close() error {
	if err := l.f.Close(); err != nil {
		return fileError("cannot close locked file", err)
	}
	return nil
}

// OpenLocked opens path for the caller's own locked section. It takes no
// lock of its own -- the caller must already hold path's table-level
// exclusive lock (see internal/lock), typically for the whole
// refresh-then-mutate sequence this open is part of.
func (OSFileSystem) OpenLocked(path string, mode OpenMode) (LockedFile, error) {
	var flags int
	switch mode {
	case ModeReadWrite:
		flags = os.O_RDWR
	case ModeCreateExclusive:
		flags = os.O_RDWR | os.O_CREATE | os.O_EXCL
	default:
		return nil, jsonlterr.NewFileError(fmt.Sprintf("unsupported open mode %v", mode))
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fileError(fmt.Sprintf("cannot open %q", path), err)
	}
	return &osLockedFile{f: f}, nil
}

func (OSFileSystem) AtomicReplace(path string, lines []string) error {
	if err := (OSFileSystem{}).EnsureParentDir(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fileError(fmt.Sprintf("cannot create temporary file %q", tmpPath), err)
	}
	defer os.Remove(tmpPath)

	for _, line := range lines {
		if _, err := io.WriteString(tmp, line); err != nil {
			tmp.Close()
			return fileError(fmt.Sprintf("cannot write temporary file %q", tmpPath), err)
		}
		if _, err := tmp.WriteString("\n"); err != nil {
			tmp.Close()
			return fileError(fmt.Sprintf("cannot write temporary file %q", tmpPath), err)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fileError(fmt.Sprintf("cannot flush temporary file %q", tmpPath), err)
	}
	if err := tmp.Close(); err != nil {
		return fileError(fmt.Sprintf("cannot close temporary file %q", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fileError(fmt.Sprintf("cannot replace %q", path), err)
	}
	return nil
}
