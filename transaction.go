package jsonlt

import (
	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
	"github.com/jsonlt/jsonlt-go/internal/recordmodel"
	"github.com/jsonlt/jsonlt-go/internal/writer"
)

type txOpKind int

const (
	opPut txOpKind = iota
	opDelete
)

type txOp struct {
	kind   txOpKind
	record jsonval.Object
}

// Transaction is a snapshot-isolated, optimistic buffered writer over a
// Table (spec §4.11). At most one Transaction may be active per Table.
type Transaction struct {
	table        *Table
	snapshotBase map[keymodel.Key]jsonval.Object // state as of transaction creation
	snapshot     map[keymodel.Key]jsonval.Object // snapshot + buffered writes overlaid
	buffer       map[keymodel.Key]txOp
	order        []keymodel.Key // buffer keys in first-touched order
	done         bool
}

func (tx *Transaction) viewState() map[keymodel.Key]jsonval.Object { return tx.snapshot }
func (tx *Transaction) viewSpec() keymodel.Specifier                { return tx.table.spec }

var _ stateView = (*Transaction)(nil)

func (tx *Transaction) checkOpen() error {
	if tx.done {
		return jsonlterr.NewTransactionError("transaction is already finalised")
	}
	return nil
}

// Get, Has, Count, Keys, All, Values, Items, Find, and FindOne serve
// identical reads to Table's, but exclusively from the snapshot plus
// buffered writes -- no file I/O occurs.

func (tx *Transaction) Get(key Key) (Record, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, false, err
	}
	return viewGet(tx, key)
}

func (tx *Transaction) Has(key Key) (bool, error) {
	if err := tx.checkOpen(); err != nil {
		return false, err
	}
	return viewHas(tx, key)
}

func (tx *Transaction) Count() (int, error) {
	if err := tx.checkOpen(); err != nil {
		return 0, err
	}
	return viewCount(tx), nil
}

func (tx *Transaction) Keys() ([]Key, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return viewKeys(tx), nil
}

func (tx *Transaction) All() ([]Record, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return viewAll(tx), nil
}

func (tx *Transaction) Values() ([]Record, error) { return tx.All() }

func (tx *Transaction) Items() ([]Item, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return viewItems(tx), nil
}

func (tx *Transaction) Find(pred func(Record) bool, limit int) ([]Record, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	return viewFind(tx, pred, limit), nil
}

func (tx *Transaction) FindOne(pred func(Record) bool) (Record, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, false, err
	}
	r, ok := viewFindOne(tx, pred)
	return r, ok, nil
}

// Put validates record and buffers it as the pending write for its key,
// overwriting any previous buffered entry for that key. Mutating record
// after Put returns has no effect on the transaction.
func (tx *Transaction) Put(record Record) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	spec := tx.table.spec
	if spec.IsZero() {
		return jsonlterr.NewInvalidKeyError("no key specifier")
	}
	if err := recordmodel.ValidateRecord(record, spec); err != nil {
		return err
	}
	if tx.table.schemaValidation && tx.table.schema != nil {
		if err := tx.table.schema.Validate(record); err != nil {
			return err
		}
	}
	key, err := recordmodel.ExtractKey(record, spec)
	if err != nil {
		return err
	}
	if err := checkSizes(key, record); err != nil {
		return err
	}

	recordCopy := jsonval.DeepCopy(record).(jsonval.Object)
	tx.touch(key)
	tx.buffer[key] = txOp{kind: opPut, record: recordCopy}
	tx.snapshot[key] = recordCopy
	return nil
}

// Delete buffers key's removal. If key is absent both from the base
// snapshot and from any buffered Put, it reports false without
// buffering anything, preserving the "one line per effective operation"
// property (spec §4.11).
func (tx *Transaction) Delete(key Key) (bool, error) {
	if err := tx.checkOpen(); err != nil {
		return false, err
	}
	spec := tx.table.spec
	if spec.IsZero() {
		return false, jsonlterr.NewInvalidKeyError("no key specifier")
	}
	if err := checkKey(key); err != nil {
		return false, err
	}
	if _, err := keymodel.Length(key); err != nil {
		return false, err
	}

	_, inBase := tx.snapshotBase[key]
	existingOp, inBuffer := tx.buffer[key]
	bufferedPut := inBuffer && existingOp.kind == opPut

	if !inBase {
		delete(tx.snapshot, key)
		if bufferedPut {
			// Put-then-Delete on a key absent from the base: the net
			// effect is nothing, so the buffered Put is withdrawn rather
			// than replaced with a tombstone (spec §4.11).
			delete(tx.buffer, key)
			tx.removeFromOrder(key)
			return true, nil
		}
		// Either never touched, or already buffered as a no-op Delete:
		// nothing changes.
		return false, nil
	}

	tx.touch(key)
	tx.buffer[key] = txOp{kind: opDelete}
	delete(tx.snapshot, key)
	return true, nil
}

func (tx *Transaction) touch(key keymodel.Key) {
	if _, ok := tx.buffer[key]; !ok {
		tx.order = append(tx.order, key)
	}
}

func (tx *Transaction) removeFromOrder(key keymodel.Key) {
	for i, k := range tx.order {
		if k == key {
			tx.order = append(tx.order[:i], tx.order[i+1:]...)
			return
		}
	}
}

// Commit re-reads the table's file under its exclusive lock, checks
// every buffered key for an optimistic conflict against the state as of
// snapshot creation, and -- if none -- appends the buffer's net effect
// as one line per key.
func (tx *Transaction) Commit() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	t := tx.table
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		tx.done = true
		t.txActive = false
	}()

	h, err := t.handle()
	defer h.Release()
	if err != nil {
		return err
	}
	if err := t.load(); err != nil {
		return err
	}

	for _, key := range tx.order {
		expected, hasExpected := tx.snapshotBase[key]
		actual, hasActual := t.state[key]
		if hasExpected != hasActual || (hasExpected && !recordEqual(expected, actual)) {
			var expAny, actAny any
			if hasExpected {
				expAny = expected
			}
			if hasActual {
				actAny = actual
			}
			return &jsonlterr.ConflictError{Key: key, Expected: expAny, Actual: actAny}
		}
	}

	lines := make([]string, 0, len(tx.order))
	for _, key := range tx.order {
		op := tx.buffer[key]
		var obj jsonval.Object
		switch op.kind {
		case opPut:
			obj = op.record
		case opDelete:
			tombstone, err := recordmodel.BuildTombstone(key, t.spec)
			if err != nil {
				return err
			}
			obj = tombstone
		}
		line, err := canon.Serialize(obj)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	if err := writer.AppendLines(t.fs, t.path, lines); err != nil {
		// Durability wins over freshness: the append may have partially
		// landed. Refresh state from disk regardless so subsequent reads
		// reflect whatever is now there (spec §4.11 step 8).
		_ = t.load()
		return err
	}

	if err := t.load(); err != nil {
		return err
	}
	return nil
}

// Abort drops the transaction's buffer and snapshot without writing
// anything.
func (tx *Transaction) Abort() error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	tx.done = true
	tx.table.mu.Lock()
	tx.table.txActive = false
	tx.table.mu.Unlock()
	return nil
}

func recordEqual(a, b jsonval.Object) bool {
	return jsonval.Equal(a, b)
}
