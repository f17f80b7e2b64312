package jsonlt

import (
	"fmt"
	"sync"
	"time"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/fsx"
	hdr "github.com/jsonlt/jsonlt-go/internal/header"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
	"github.com/jsonlt/jsonlt-go/internal/lock"
	"github.com/jsonlt/jsonlt-go/internal/reader"
	"github.com/jsonlt/jsonlt-go/internal/recordmodel"
	"github.com/jsonlt/jsonlt-go/internal/schemacheck"
	"github.com/jsonlt/jsonlt-go/internal/state"
	"github.com/jsonlt/jsonlt-go/internal/writer"
)

// DefaultLockTimeout is used when OpenOptions.LockTimeout is nil (spec
// §9's open question: "choose and document a value that errs on the
// side of surfacing contention rather than hiding it").
const DefaultLockTimeout = 10 * time.Second

// Indefinite, when used as OpenOptions.LockTimeout, requests an
// unbounded wait for the file lock rather than DefaultLockTimeout.
const Indefinite time.Duration = -1

// NoSizeLimit disables OpenOptions.MaxFileSize.
const NoSizeLimit int64 = -1

// OpenOptions configures Open. The zero value means: no caller-supplied
// key specifier, auto-reload on, no file-size limit, DefaultLockTimeout.
type OpenOptions struct {
	// Spec is the caller-supplied key specifier. Leave zero to defer to
	// the file's header; with neither set, Put and Delete fail with
	// InvalidKeyError.
	Spec KeySpecifier

	// NoAutoReload disables the default auto-reload-on-stale-signature
	// behaviour.
	NoAutoReload bool

	// MaxFileSize bounds read_file's accepted size; NoSizeLimit (the
	// zero value's effective meaning) disables the check.
	MaxFileSize int64

	// LockTimeout is a pointer so "not set" (-> DefaultLockTimeout) is
	// distinguishable from an explicit Indefinite or zero (non-blocking)
	// request.
	LockTimeout *time.Duration

	// MaxDepth overrides the JSON nesting-depth limit (default 64).
	MaxDepth int
}

// Table is JSONLT's public read/write entity (spec §4.10): it owns
// in-memory logical state, a cached sorted-key list, the file
// signature, and the effective key specifier.
type Table struct {
	mu sync.Mutex

	fs          fsx.FileSystem
	path        string
	autoReload  bool
	maxFileSize int64
	lockTimeout *time.Duration
	maxDepth    int

	header           *hdr.Header
	schema           *schemacheck.Checker
	schemaValidation bool
	spec             KeySpecifier
	state            map[keymodel.Key]jsonval.Object
	sorted           []keymodel.Key
	sig              fsx.Stats
	txActive         bool
}

// WithSchemaValidation toggles whether Put (on t and on transactions
// started from t) enforces the header's inline schema, if any. A
// schema referenced by the header is consumer metadata, not part of
// the core record format (spec §4.5): validation is opt-in and off by
// default, so Put accepts any record the key specifier and size limits
// allow regardless of what schema the header happens to carry.
func (t *Table) WithSchemaValidation(enabled bool) *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.schemaValidation = enabled
	return t
}

// Open opens (or initialises, if absent) the table at path through fs.
func Open(fs fsx.FileSystem, path string, opts OpenOptions) (*Table, error) {
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = canon.DefaultMaxDepth
	}
	maxFileSize := opts.MaxFileSize
	if maxFileSize == 0 {
		maxFileSize = NoSizeLimit
	}

	t := &Table{
		fs:          fs,
		path:        path,
		autoReload:  !opts.NoAutoReload,
		maxFileSize: maxFileSize,
		lockTimeout: resolveLockTimeout(opts.LockTimeout),
		maxDepth:    maxDepth,
		spec:        opts.Spec,
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func resolveLockTimeout(requested *time.Duration) *time.Duration {
	if requested == nil {
		d := DefaultLockTimeout
		return &d
	}
	if *requested < 0 {
		return nil // Indefinite
	}
	d := *requested
	return &d
}

// load performs the open sequence of spec §4.10: read+parse if present,
// resolve the effective key specifier, fold logical state, cache the
// file signature.
func (t *Table) load() error {
	sig, err := t.fs.Stat(t.path)
	if err != nil {
		return err
	}

	var file reader.File
	if sig.Exists {
		var maxSize int64 = -1
		if t.maxFileSize != NoSizeLimit {
			maxSize = t.maxFileSize
		}
		raw, err := t.fs.ReadBytes(t.path, maxSize)
		if err != nil {
			return err
		}
		file, err = reader.ParseBytes(raw, t.maxDepth)
		if err != nil {
			return err
		}
	}

	effectiveSpec, err := resolveSpec(file, t.spec)
	if err != nil {
		return err
	}
	t.spec = effectiveSpec
	if file.HeaderSet {
		t.header = file.Header
		if t.header.HasSchema && !t.header.SchemaIsURL {
			checker, err := schemacheck.FromInline(t.header.SchemaInline)
			if err != nil {
				return err
			}
			t.schema = checker
		}
	} else {
		t.header = nil
		t.schema = nil
	}

	if !t.spec.IsZero() {
		st, err := state.Compute(file.Lines, t.spec)
		if err != nil {
			return err
		}
		t.state = st
	} else {
		t.state = make(map[keymodel.Key]jsonval.Object)
	}
	t.sorted = nil
	t.sig = sig
	return nil
}

func resolveSpec(file reader.File, caller KeySpecifier) (KeySpecifier, error) {
	if file.HeaderSet && file.Header.HasKey {
		headerSpec := file.Header.Key
		if !caller.IsZero() && !caller.Equal(headerSpec) {
			return KeySpecifier{}, jsonlterr.NewInvalidKeyError("key specifier mismatch")
		}
		return headerSpec, nil
	}
	if !caller.IsZero() {
		return caller, nil
	}
	if len(file.Lines) > 0 {
		return KeySpecifier{}, jsonlterr.NewInvalidKeyError("no key specifier")
	}
	return KeySpecifier{}, nil
}

// ensureFresh re-stats the file and, if its signature has changed (or it
// has disappeared), reloads and rebuilds state.
func (t *Table) ensureFresh() error {
	if !t.autoReload {
		return nil
	}
	sig, err := t.fs.Stat(t.path)
	if err != nil {
		return err
	}
	if sig.Exists == t.sig.Exists && sig.Size == t.sig.Size && sig.Mtime.Equal(t.sig.Mtime) {
		return nil
	}
	return t.load()
}

func (t *Table) viewState() map[keymodel.Key]jsonval.Object { return t.state }
func (t *Table) viewSpec() keymodel.Specifier                { return t.spec }

var _ stateView = (*Table)(nil)

// Get returns the record stored at key, and whether it was present.
func (t *Table) Get(key Key) (Record, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, false, err
	}
	return viewGet(t, key)
}

// Has reports whether key is present.
func (t *Table) Has(key Key) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return false, err
	}
	return viewHas(t, key)
}

// Count returns the number of records currently stored.
func (t *Table) Count() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return 0, err
	}
	return viewCount(t), nil
}

// Keys returns every key in the table's total order (spec §4.3).
func (t *Table) Keys() ([]Key, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, err
	}
	return t.sortedKeysLocked(), nil
}

func (t *Table) sortedKeysLocked() []Key {
	if t.sorted == nil {
		t.sorted = viewKeys(t)
	}
	return t.sorted
}

// All returns every record, ordered by key.
func (t *Table) All() ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, err
	}
	keys := t.sortedKeysLocked()
	out := make([]Record, len(keys))
	for i, k := range keys {
		out[i] = jsonval.DeepCopy(t.state[k]).(jsonval.Object)
	}
	return out, nil
}

// Values is an alias for All.
func (t *Table) Values() ([]Record, error) { return t.All() }

// Items returns every (Key, Record) pair, ordered by key.
func (t *Table) Items() ([]Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, err
	}
	return viewItems(t), nil
}

// Find scans records in key order, returning those for which pred
// returns true. limit <= 0 means unlimited.
func (t *Table) Find(pred func(Record) bool, limit int) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, err
	}
	return viewFind(t, pred, limit), nil
}

// FindOne returns the first record in key order for which pred returns
// true.
func (t *Table) FindOne(pred func(Record) bool) (Record, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFresh(); err != nil {
		return nil, false, err
	}
	r, ok := viewFindOne(t, pred)
	return r, ok, nil
}

// Put validates and stores record, appending its canonical serialization
// under the table's exclusive lock.
func (t *Table) Put(record Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.handle()
	defer h.Release()
	if err != nil {
		return err
	}
	if err := t.load(); err != nil {
		return err
	}
	if t.spec.IsZero() {
		return jsonlterr.NewInvalidKeyError("no key specifier")
	}
	if err := recordmodel.ValidateRecord(record, t.spec); err != nil {
		return err
	}
	if t.schemaValidation && t.schema != nil {
		if err := t.schema.Validate(record); err != nil {
			return err
		}
	}
	key, err := recordmodel.ExtractKey(record, t.spec)
	if err != nil {
		return err
	}
	if err := checkSizes(key, record); err != nil {
		return err
	}

	line, err := canon.Serialize(record)
	if err != nil {
		return err
	}
	if err := writer.AppendLines(t.fs, t.path, []string{line}); err != nil {
		return err
	}

	t.state[key] = jsonval.DeepCopy(record).(jsonval.Object)
	t.sorted = nil
	t.refreshSignature()
	return nil
}

// Delete removes key, appending a tombstone if it was present. It
// reports whether key existed.
func (t *Table) Delete(key Key) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.handle()
	defer h.Release()
	if err != nil {
		return false, err
	}
	if err := t.load(); err != nil {
		return false, err
	}
	if t.spec.IsZero() {
		return false, jsonlterr.NewInvalidKeyError("no key specifier")
	}
	if err := checkKey(key); err != nil {
		return false, err
	}
	if _, ok := t.state[key]; !ok {
		return false, nil
	}

	tombstone, err := recordmodel.BuildTombstone(key, t.spec)
	if err != nil {
		return false, err
	}
	line, err := canon.Serialize(tombstone)
	if err != nil {
		return false, err
	}

	if err := writer.AppendLines(t.fs, t.path, []string{line}); err != nil {
		return false, err
	}

	delete(t.state, key)
	t.sorted = nil
	t.refreshSignature()
	return true, nil
}

// Clear rewrites the file to only its header (if any), dropping all
// state.
func (t *Table) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.handle()
	defer h.Release()
	if err != nil {
		return err
	}
	if err := writer.Rewrite(t.fs, t.path, t.header, nil); err != nil {
		return err
	}
	t.state = make(map[keymodel.Key]jsonval.Object)
	t.sorted = nil
	t.refreshSignature()
	return nil
}

// Compact rewrites the file to the header (if any) followed by every
// current record in key order, dropping tombstones and historical
// versions.
func (t *Table) Compact() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.handle()
	defer h.Release()
	if err != nil {
		return err
	}
	if err := t.load(); err != nil {
		return err
	}

	keys := viewKeys(t)
	lines := make([]string, len(keys))
	for i, k := range keys {
		line, err := canon.Serialize(t.state[k])
		if err != nil {
			return err
		}
		lines[i] = line
	}
	if err := writer.Rewrite(t.fs, t.path, t.header, lines); err != nil {
		return err
	}
	t.refreshSignature()
	return nil
}

// Reload unconditionally re-reads and rebuilds state.
func (t *Table) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// Transaction starts a snapshot-isolated transaction on t. Only one may
// be active at a time.
func (t *Table) Transaction() (*Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.txActive {
		return nil, jsonlterr.NewTransactionError("a transaction is already active on this table")
	}
	if err := t.ensureFresh(); err != nil {
		return nil, err
	}

	snapshot := make(map[keymodel.Key]jsonval.Object, len(t.state))
	for k, v := range t.state {
		snapshot[k] = jsonval.DeepCopy(v).(jsonval.Object)
	}

	t.txActive = true
	return &Transaction{
		table:        t,
		snapshotBase: snapshot,
		snapshot:     cloneState(snapshot),
		buffer:       make(map[keymodel.Key]txOp),
		order:        nil,
	}, nil
}

func (t *Table) handle() (*lock.Handle, error) {
	return lock.Acquire(t.path, t.lockTimeout)
}

func (t *Table) refreshSignature() {
	sig, err := t.fs.Stat(t.path)
	if err != nil {
		// Durability wins over freshness (spec §7): the write already
		// landed, so a failed post-write stat is swallowed here and
		// will simply be retried on the next ensureFresh.
		return
	}
	t.sig = sig
}

func checkSizes(key keymodel.Key, record jsonval.Object) error {
	keyLen, err := keymodel.Length(key)
	if err != nil {
		return err
	}
	if keyLen > 1024 {
		return jsonlterr.NewLimitError(fmt.Sprintf("key length %d exceeds the maximum of 1024 bytes", keyLen))
	}
	size, err := recordmodel.RecordSize(record)
	if err != nil {
		return err
	}
	if size > 1<<20 {
		return jsonlterr.NewLimitError(fmt.Sprintf("record size %d exceeds the maximum of 1048576 bytes", size))
	}
	return nil
}

func cloneState(src map[keymodel.Key]jsonval.Object) map[keymodel.Key]jsonval.Object {
	out := make(map[keymodel.Key]jsonval.Object, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
