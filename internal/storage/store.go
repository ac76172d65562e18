// Package storage persists RCSB entry metadata between sessions so repeated
// searches skip the metadata round-trip.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/pdbscope/internal/rcsb"
)

var (
	detailsBucket = []byte("details")
	titlesBucket  = []byte("titles")
)

type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore opens (or creates) the cache at dbPath. Entries older than ttl are
// treated as misses; a ttl of zero keeps entries forever.
func NewStore(dbPath string, ttl time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{detailsBucket, titlesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id string) []byte {
	return []byte(strings.ToUpper(id))
}

func (s *Store) fresh(fetched time.Time) bool {
	return s.ttl <= 0 || s.now().Sub(fetched) < s.ttl
}

// GetDetails returns the cached, unexpired details for ids keyed by ID.
// Missing IDs are simply absent from the map.
func (s *Store) GetDetails(ids []string) (map[string]rcsb.EntryDetail, error) {
	out := make(map[string]rcsb.EntryDetail, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(detailsBucket)
		for _, id := range ids {
			data := b.Get(key(id))
			if data == nil {
				continue
			}
			var c cachedDetail
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("decoding %s: %w", id, err)
			}
			if s.fresh(c.FetchedAt) {
				out[id] = c.Detail
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) PutDetails(details []rcsb.EntryDetail) error {
	now := s.now()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(detailsBucket)
		for _, d := range details {
			data, err := json.Marshal(cachedDetail{Detail: d, FetchedAt: now})
			if err != nil {
				return err
			}
			if err := b.Put(key(d.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTitles returns cached, unexpired titles for ids keyed by ID.
func (s *Store) GetTitles(ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(titlesBucket)
		for _, id := range ids {
			data := b.Get(key(id))
			if data == nil {
				continue
			}
			var c cachedTitle
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("decoding %s: %w", id, err)
			}
			if s.fresh(c.FetchedAt) {
				out[id] = c.Title
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) PutTitles(titles []rcsb.Title) error {
	now := s.now()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(titlesBucket)
		for _, t := range titles {
			data, err := json.Marshal(cachedTitle{Title: t.Title, FetchedAt: now})
			if err != nil {
				return err
			}
			if err := b.Put(key(t.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Prune removes expired entries and reports how many were deleted.
func (s *Store) Prune() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{detailsBucket, titlesBucket} {
			b := tx.Bucket(name)
			var stale [][]byte
			err := b.ForEach(func(k, v []byte) error {
				var stamp struct {
					FetchedAt time.Time `json:"fetched_at"`
				}
				if err := json.Unmarshal(v, &stamp); err != nil || !s.fresh(stamp.FetchedAt) {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			removed += len(stale)
		}
		return nil
	})
	return removed, err
}

// Clear drops every cached entry.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{detailsBucket, titlesBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		count := func(name []byte, n *int) error {
			return tx.Bucket(name).ForEach(func(_, v []byte) error {
				*n++
				var stamp struct {
					FetchedAt time.Time `json:"fetched_at"`
				}
				if err := json.Unmarshal(v, &stamp); err == nil && !s.fresh(stamp.FetchedAt) {
					st.Expired++
				}
				return nil
			})
		}
		if err := count(detailsBucket, &st.Details); err != nil {
			return err
		}
		return count(titlesBucket, &st.Titles)
	})
	return st, err
}
