package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Schema versions:
// 1 - one JSON array per group under g:<group>
// 2 - one key per record under a:<group>:<index>, plus m:<group>:size
const CurrentSchemaVersion = 2

const schemaKey = "m:__schema__"

// Schema records the layout version of a Badger store.
type Schema struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetSchema returns the stored schema, or nil when none was written.
func (b *Badger) GetSchema() *Schema {
	var schema *Schema
	_ = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			schema = &Schema{}
			return json.Unmarshal(val, schema)
		})
	})
	return schema
}

// SetSchema stores the schema version.
func (b *Badger) SetSchema(schema *Schema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaKey), data)
	})
}

// Migrate upgrades the store to CurrentSchemaVersion and returns the number of
// migrations run. A store without a schema key is version 1 if it holds
// legacy group keys, and fresh otherwise.
func (b *Badger) Migrate(ctx context.Context) (int, error) {
	from := 0
	if schema := b.GetSchema(); schema != nil {
		from = schema.Version
	} else if b.hasLegacyGroups() {
		from = 1
	}

	if from >= CurrentSchemaVersion {
		return 0, nil
	}
	if from == 0 {
		return 0, b.SetSchema(&Schema{Version: CurrentSchemaVersion, UpdatedAt: time.Now()})
	}

	run := 0
	for version := from + 1; version <= CurrentSchemaVersion; version++ {
		if err := checkContext(ctx); err != nil {
			return run, err
		}

		var err error
		switch version {
		case 2:
			err = b.migrateToV2(ctx)
		}
		if err != nil {
			return run, fmt.Errorf("migrating to schema v%d: %w", version, err)
		}

		if err := b.SetSchema(&Schema{Version: version, UpdatedAt: time.Now()}); err != nil {
			return run, err
		}
		run++
	}
	return run, nil
}

// migrateToV2 splits every legacy group blob into per-record keys.
func (b *Badger) migrateToV2(ctx context.Context) error {
	legacy := make(map[string][]types.Record)

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixLegacy)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			group := string(it.Item().Key()[len(prefixLegacy):])
			err := it.Item().Value(func(val []byte) error {
				var records []types.Record
				if err := json.Unmarshal(val, &records); err != nil {
					return fmt.Errorf("decoding legacy group %s: %w", group, err)
				}
				legacy[group] = records
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for group, records := range legacy {
		if err := b.WriteArray(ctx, group, records); err != nil {
			return err
		}
		err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(prefixLegacy + group))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Badger) hasLegacyGroups() bool {
	var found bool
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixLegacy)
		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	return found
}
