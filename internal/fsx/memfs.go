package fsx

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
)

type memFile struct {
	content []byte
	mtime   time.Time
}

// MemFileSystem is an in-memory FileSystem for tests, mirroring the
// original implementation's fake filesystem fixture.
type MemFileSystem struct {
	mu    sync.Mutex
	files map[string]*memFile

	FailStat         map[string]bool
	FailOpen         map[string]bool
	FailEnsureParent map[string]bool
}

// NewMem returns an empty in-memory FileSystem.
func NewMem() *MemFileSystem {
	return &MemFileSystem{
		files:            make(map[string]*memFile),
		FailStat:         make(map[string]bool),
		FailOpen:         make(map[string]bool),
		FailEnsureParent: make(map[string]bool),
	}
}

var _ FileSystem = (*MemFileSystem)(nil)

// SetContent seeds path with content directly, bypassing AtomicReplace.
func (m *MemFileSystem) SetContent(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &memFile{content: append([]byte(nil), content...), mtime: time.Now()}
}

// Content returns path's current bytes, or nil if path is unset.
func (m *MemFileSystem) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.content...), true
}

func (m *MemFileSystem) Stat(path string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStat[path] {
		return Stats{}, jsonlterr.NewFileError("simulated stat error")
	}
	f, ok := m.files[path]
	if !ok {
		return Stats{}, nil
	}
	return Stats{Mtime: f.mtime, Size: int64(len(f.content)), Exists: true}, nil
}

func (m *MemFileSystem) ReadBytes(path string, maxSize int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, jsonlterr.NewFileError(fmt.Sprintf("file not found: %q", path))
	}
	if maxSize >= 0 && int64(len(f.content)) > maxSize {
		return nil, jsonlterr.NewLimitError(fmt.Sprintf("file %q has size %d, exceeding the maximum of %d", path, len(f.content), maxSize))
	}
	return append([]byte(nil), f.content...), nil
}

func (m *MemFileSystem) EnsureParentDir(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEnsureParent[path] {
		return jsonlterr.NewFileError("simulated ensure-parent-dir error")
	}
	return nil
}

type memLockedFile struct {
	fs   *MemFileSystem
	file *memFile
	pos  int
}

func (l *memLockedFile) Read(p []byte) (int, error) {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	n := copy(p, l.file.content[l.pos:])
	l.pos += n
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (l *memLockedFile) Write(p []byte) (int, error) {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	content := l.file.content
	prefix := content[:l.pos]
	l.file.content = append(append([]byte(nil), prefix...), p...)
	l.pos += len(p)
	return len(p), nil
}

func (l *memLockedFile) Seek(offset int64, whence int) (int64, error) {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	switch whence {
	case 0:
		l.pos = int(offset)
	case 1:
		l.pos += int(offset)
	case 2:
		l.pos = len(l.file.content) + int(offset)
	}
	return int64(l.pos), nil
}

func (l *memLockedFile) Sync() error {
	l.fs.mu.Lock()
	defer l.fs.mu.Unlock()
	l.file.mtime = time.Now()
	return nil
}

func (l *memLockedFile) Close() error { return nil }

func (m *MemFileSystem) OpenLocked(path string, mode OpenMode) (LockedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOpen[path] {
		return nil, jsonlterr.NewFileError("simulated open error")
	}

	switch mode {
	case ModeReadWrite:
		f, ok := m.files[path]
		if !ok {
			return nil, jsonlterr.NewFileError(fmt.Sprintf("file not found: %q", path))
		}
		return &memLockedFile{fs: m, file: f}, nil
	case ModeCreateExclusive:
		if _, exists := m.files[path]; exists {
			return nil, jsonlterr.NewFileError(fmt.Sprintf("file already exists: %q", path))
		}
		f := &memFile{}
		m.files[path] = f
		return &memLockedFile{fs: m, file: f}, nil
	default:
		return nil, jsonlterr.NewFileError(fmt.Sprintf("unsupported open mode %v", mode))
	}
}

func (m *MemFileSystem) AtomicReplace(path string, lines []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	m.files[path] = &memFile{content: buf.Bytes(), mtime: time.Now()}
	return nil
}
