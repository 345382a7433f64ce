package settings

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// WriteLegacyGroup stores records in the schema v1 layout and drops the
// schema key, so reopening the store triggers a migration.
func (b *Badger) WriteLegacyGroup(group string, records []types.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(schemaKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := deletePrefix(txn, arrayPrefix(group)); err != nil {
			return err
		}
		return txn.Set([]byte(prefixLegacy+group), data)
	})
}
