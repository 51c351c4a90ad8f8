// Package bolt implements store.Store on an embedded BoltDB file.
//
// State entries and events live in two buckets; a commit is one bolt
// update transaction, so it is atomic and durable once Commit returns.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
)

// Bucket names.
var (
	bucketState  = []byte("gametoken_state")
	bucketEvents = []byte("gametoken_events")
)

var errNoBucket = errors.New("gametoken/bolt: bucket missing, run Migrate")

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using BoltDB.
type Store struct {
	db *bolt.DB
}

// New wraps an open bolt database.
func New(db *bolt.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("gametoken/bolt: open %s: %w", path, err)
	}
	return New(db), nil
}

// DB returns the underlying bolt database for direct access.
func (s *Store) DB() *bolt.DB { return s.db }

// Migrate creates the buckets.
func (s *Store) Migrate(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("gametoken/bolt: create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// Ping checks the database is open.
func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load implements store.Store.
func (s *Store) Load(_ context.Context) (*store.Snapshot, error) {
	var entries []kv.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return errNoBucket
		}
		return b.ForEach(func(k, v []byte) error {
			entries = append(entries, kv.Entry{Key: string(k), Value: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return kv.Decode(entries)
}

// Commit implements store.Store.
func (s *Store) Commit(ctx context.Context, cs *store.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := kv.Encode(cs)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		state := tx.Bucket(bucketState)
		events := tx.Bucket(bucketEvents)
		if state == nil || events == nil {
			return errNoBucket
		}
		for _, e := range entries {
			b := state
			if kv.IsEventKey(e.Key) {
				b = events
			}
			if err := b.Put([]byte(e.Key), []byte(e.Value)); err != nil {
				return fmt.Errorf("gametoken/bolt: put %s: %w", e.Key, err)
			}
		}
		return nil
	})
}

// Events implements store.Store.
func (s *Store) Events(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var out []*event.Event
	from, _ := kv.EventRange(opts.After)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		if b == nil {
			return errNoBucket
		}
		c := b.Cursor()
		for k, v := c.Seek([]byte(from)); k != nil; k, v = c.Next() {
			evt, err := kv.DecodeEvent(string(v))
			if err != nil {
				return err
			}
			if !opts.Match(evt) {
				continue
			}
			out = append(out, evt)
			if opts.Limit > 0 && len(out) == opts.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
