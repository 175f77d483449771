package invoice

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

const invoiceBucketName = "invoices"

// BoltStore implements the Store interface on BoltDB. Records are keyed by
// the bucket sequence so iteration order is append order, and every append
// is a single write transaction.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(invoiceBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Append stores records after the existing ones
func (b *BoltStore) Append(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		for _, record := range records {
			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("allocating sequence: %w", err)
			}
			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshaling invoice: %w", err)
			}
			if err := bucket.Put(sequenceKey(seq), data); err != nil {
				return fmt.Errorf("storing invoice: %w", err)
			}
		}
		return nil
	})
}

// Load returns all records in append order
func (b *BoltStore) Load() []Record {
	records := make([]Record, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling invoice %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		slog.Warn("Failed to load invoices", "error", err)
		return []Record{}
	}
	return records
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}

// sequenceKey encodes seq big-endian so byte order matches numeric order
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
