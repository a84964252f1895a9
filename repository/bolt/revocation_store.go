// Package bolt keeps the logout denylist in a local BoltDB file for
// single-node deployments that run without Redis.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

// Store wraps BoltDB to persist revoked token ids until they expire.
type Store struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

var _ repository.RevocationRepository = (*Store)(nil)

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "revocations"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
		now:    time.Now,
	}, nil
}

// Revoke records a token id. Entries already past expiry are not stored.
func (s *Store) Revoke(_ context.Context, revocation domain.Revocation) error {
	if s == nil || s.db == nil {
		return domain.Unavailable(bbolt.ErrDatabaseNotOpen)
	}
	if revocation.TokenID == "" {
		return domain.ErrValidation
	}
	if revocation.IsExpired(s.now()) {
		return nil
	}

	payload, err := json.Marshal(revocation)
	if err != nil {
		return err
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(revocation.TokenID), payload)
	}); err != nil {
		return domain.Unavailable(err)
	}
	return nil
}

// IsRevoked reports whether the token id is on the list and not yet expired.
func (s *Store) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, domain.Unavailable(bbolt.ErrDatabaseNotOpen)
	}
	if tokenID == "" {
		return false, nil
	}

	var revoked bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(tokenID))
		if raw == nil {
			return nil
		}
		var entry domain.Revocation
		if err := json.Unmarshal(raw, &entry); err != nil {
			// unreadable entries are treated as revoked
			revoked = true
			return nil
		}
		revoked = !entry.IsExpired(s.now())
		return nil
	})
	if err != nil {
		return false, domain.Unavailable(err)
	}
	return revoked, nil
}

// Sweep removes entries whose tokens have expired and returns how many went.
func (s *Store) Sweep(reference time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		// deleting through a live cursor skips keys, so collect first
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			var entry domain.Revocation
			if err := json.Unmarshal(v, &entry); err != nil || entry.IsExpired(reference) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Size returns the number of stored entries.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
