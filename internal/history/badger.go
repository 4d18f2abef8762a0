package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const keyPrefix = "h/"

// BadgerSink stores history in a Badger key-value store. Keys are
// h/<target>/<attribute>/<zero-padded unix nanos> so a prefix scan returns the
// entries of one property in time order.
type BadgerSink struct {
	db *badger.DB
}

// OpenBadgerSink opens (or creates) a Badger database in dir.
func OpenBadgerSink(dir string) (*BadgerSink, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &BadgerSink{db: db}, nil
}

// NewBadgerSink wraps an open database.
func NewBadgerSink(db *badger.DB) *BadgerSink {
	return &BadgerSink{db: db}
}

// Append implements Sink. All entries are written in one transaction.
func (s *BadgerSink) Append(_ context.Context, target string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	type kv struct {
		key, value []byte
	}
	pairs := make([]kv, 0, len(entries))
	for _, e := range entries {
		r, err := toRecord(e)
		if err != nil {
			return err
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal history record: %w", err)
		}
		pairs = append(pairs, kv{key: entryKey(target, e.Attribute, e.Timestamp), value: data})
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range pairs {
			if err := txn.Set(p.key, p.value); err != nil {
				return fmt.Errorf("set history entry: %w", err)
			}
		}
		return nil
	})
}

// Query implements Sink
func (s *BadgerSink) Query(_ context.Context, target, attr string, from, to time.Time) ([]Entry, error) {
	prefix := []byte(propertyPrefix(target, attr))
	var entries []Entry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if !from.IsZero() {
			seek = entryKey(target, attr, from)
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var r record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("unmarshal history record: %w", err)
			}
			if !inRange(r.Timestamp, from, to) {
				if !to.IsZero() && r.Timestamp.After(to) {
					break
				}
				continue
			}
			v, err := r.value()
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Attribute: attr, Timestamp: r.Timestamp, Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close implements Sink
func (s *BadgerSink) Close() error {
	return s.db.Close()
}

func propertyPrefix(target, attr string) string {
	return keyPrefix + escapeKeyPart(target) + "/" + escapeKeyPart(attr) + "/"
}

func entryKey(target, attr string, ts time.Time) []byte {
	nanos := ts.UnixNano()
	if nanos < 0 {
		nanos = 0
	}
	return []byte(fmt.Sprintf("%s%020d", propertyPrefix(target, attr), nanos))
}

// escapeKeyPart keeps '/' inside names from splitting key segments
func escapeKeyPart(s string) string {
	return strings.NewReplacer("%", "%25", "/", "%2F").Replace(s)
}
