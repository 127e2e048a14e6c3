package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openapi-it/openapi-client-go/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	tokenBucket      = "tokens"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("token bucket missing")

// boltStore implements a Store backed by BoltDB. Each value is an 8-byte
// big-endian expiry (unix seconds) followed by the JSON record.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tokenBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		cleanupInterval: opts.CleanupInterval,
		now:             opts.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveToken stores rec keyed by its id, replacing any previous entry.
func (b *boltStore) SaveToken(rec domain.TokenRecord) error {
	if b == nil || b.db == nil {
		return nil
	}
	if rec.ID == "" {
		return fmt.Errorf("token record has no id")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	value, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(rec.ID), value)
	})
}

// DeleteToken removes the record for id and reports whether it existed.
func (b *boltStore) DeleteToken(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	var existed bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return errBucketMissing
		}
		key := []byte(id)
		existed = bucket.Get(key) != nil
		if !existed {
			return nil
		}
		return bucket.Delete(key)
	})
	return existed, err
}

// ActiveTokens returns unexpired records ordered by expiry, dropping expired ones.
func (b *boltStore) ActiveTokens() ([]domain.TokenRecord, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.TokenRecord
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return errBucketMissing
		}

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			var rec domain.TokenRecord
			if err := json.Unmarshal(v[expiryValueBytes:], &rec); err != nil {
				stale = append(stale, append([]byte(nil), k...))
				return nil
			}
			out = append(out, rec)
			return nil
		})
		if err != nil {
			return err
		}
		return deleteKeys(bucket, stale)
	})
	if err != nil {
		return nil, err
	}
	b.lastCleanup.Store(now.Unix())

	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// maybeCleanupExpired removes expired tokens on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return errBucketMissing
		}

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		return deleteKeys(bucket, stale)
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// deleteKeys removes keys collected during iteration; bbolt cursors skip
// entries when deleting while walking.
func deleteKeys(bucket *bolt.Bucket, keys [][]byte) error {
	for _, k := range keys {
		if err := bucket.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func encodeRecord(rec domain.TokenRecord) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode token record: %w", err)
	}
	buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(rec.ExpiresAt.Unix()))
	return append(buf, payload...), nil
}

// decodeExpiry decodes the expiry time from the head of a stored value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
