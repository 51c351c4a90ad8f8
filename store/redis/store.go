// Package redis implements store.Store on Redis.
//
// State entries live in one hash and events in a sorted set scored by
// sequence. A commit runs as a single MULTI/EXEC block.
package redis

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
)

// DefaultPrefix namespaces the keys of one token.
const DefaultPrefix = "gametoken"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix, allowing several tokens per database.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// Store implements store.Store using a go-redis client.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// New creates a Store on client.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying redis client.
func (s *Store) Client() goredis.UniversalClient { return s.client }

func (s *Store) stateKey() string  { return s.prefix + ":state" }
func (s *Store) eventsKey() string { return s.prefix + ":events" }

// Migrate is a no-op; redis needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context) (*store.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.stateKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("gametoken/redis: load state: %w", err)
	}
	entries := make([]kv.Entry, 0, len(fields))
	for k, v := range fields {
		entries = append(entries, kv.Entry{Key: k, Value: v})
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

	var (
		state  []interface{}
		events []goredis.Z
	)
	for _, e := range entries {
		if kv.IsEventKey(e.Key) {
			continue
		}
		state = append(state, e.Key, e.Value)
	}
	for _, evt := range cs.Events {
		value, err := eventValue(entries, evt.Sequence)
		if err != nil {
			return err
		}
		events = append(events, goredis.Z{Score: float64(evt.Sequence), Member: value})
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if len(state) > 0 {
			pipe.HSet(ctx, s.stateKey(), state...)
		}
		if len(events) > 0 {
			pipe.ZAdd(ctx, s.eventsKey(), events...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("gametoken/redis: commit: %w", err)
	}
	return nil
}

func eventValue(entries []kv.Entry, seq uint64) (string, error) {
	key := kv.EventKey(seq)
	for _, e := range entries {
		if e.Key == key {
			return e.Value, nil
		}
	}
	return "", fmt.Errorf("gametoken/redis: event %d not encoded", seq)
}

// Events implements store.Store.
func (s *Store) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	by := &goredis.ZRangeBy{
		Min: "(" + strconv.FormatUint(opts.After, 10),
		Max: "+inf",
	}
	if opts.Kind == "" && opts.Limit > 0 {
		by.Count = int64(opts.Limit)
	}

	values, err := s.client.ZRangeByScore(ctx, s.eventsKey(), by).Result()
	if err != nil {
		return nil, fmt.Errorf("gametoken/redis: list events: %w", err)
	}

	out := make([]*event.Event, 0, len(values))
	for _, v := range values {
		evt, err := kv.DecodeEvent(v)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return event.ListOpts{Kind: opts.Kind, Limit: opts.Limit}.Filter(out), nil
}
