package settings

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Key prefixes.
const (
	prefixArray  = "a:" // a:<group>:<index> -> JSON record
	prefixMeta   = "m:" // m:<group>:size -> uint64 record count
	prefixLegacy = "g:" // g:<group> -> JSON record array (schema v1)
)

// Badger is a Store backed by a Badger database directory.
type Badger struct {
	db   *badger.DB
	path string
}

var _ Store = (*Badger)(nil)

// OpenBadger opens or creates a Badger store in dir and migrates it to the
// current schema.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store %s: %w", dir, err)
	}

	b := &Badger{db: db, path: dir}
	if _, err := b.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating badger store %s: %w", dir, err)
	}
	return b, nil
}

func arrayPrefix(group string) []byte {
	return []byte(prefixArray + group + ":")
}

func arrayKey(group string, index int) []byte {
	return fmt.Appendf(nil, "%s%s:%08d", prefixArray, group, index)
}

func sizeKey(group string) []byte {
	return []byte(prefixMeta + group + ":size")
}

// ReadArray implements Store.
func (b *Badger) ReadArray(ctx context.Context, group string) ([]types.Record, error) {
	var records []types.Record

	err := b.db.View(func(txn *badger.Txn) error {
		if n, err := readSize(txn, group); err == nil {
			records = make([]types.Record, 0, n)
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := arrayPrefix(group)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := checkContext(ctx); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var r types.Record
				if err := json.Unmarshal(val, &r); err != nil {
					return fmt.Errorf("decoding %s: %w", it.Item().Key(), err)
				}
				records = append(records, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.Record{}
	}
	return records, nil
}

// WriteArray implements Store. The old array is deleted in the same transaction.
func (b *Badger) WriteArray(ctx context.Context, group string, records []types.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, arrayPrefix(group)); err != nil {
			return err
		}
		for i, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := txn.Set(arrayKey(group, i), data); err != nil {
				return err
			}
		}
		return writeSize(txn, group, len(records))
	})
}

// Writable implements Store.
func (b *Badger) Writable() bool { return !b.db.IsClosed() }

// Location implements Store.
func (b *Badger) Location() string { return b.path }

// Close implements Store.
func (b *Badger) Close() error { return b.db.Close() }

func readSize(txn *badger.Txn, group string) (int, error) {
	item, err := txn.Get(sizeKey(group))
	if err != nil {
		return 0, err
	}
	var n int
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return errors.New("invalid size value")
		}
		n = int(binary.BigEndian.Uint64(val))
		return nil
	})
	return n, err
}

func writeSize(txn *badger.Txn, group string, n int) error {
	return txn.Set(sizeKey(group), binary.BigEndian.AppendUint64(nil, uint64(n)))
}

// deletePrefix removes every key starting with prefix inside txn.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
