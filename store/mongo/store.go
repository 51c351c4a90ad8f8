// Package mongo implements store.Store on MongoDB.
//
// Every entry is one document keyed by its kv key. Commit upserts the
// documents inside a multi-document transaction, so the server must run
// as a replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/Gametoken-tech/gametoken/event"
	tokenstore "github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
)

const colEntries = "gametoken_entries"

// compile-time interface check
var _ tokenstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate is a no-op: documents are keyed by _id, which MongoDB indexes.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context) (*tokenstore.Snapshot, error) {
	var models []entryModel
	err := s.mdb.NewFind(&models).
		Filter(stateFilter()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("gametoken/mongo: load state: %w", err)
	}
	return kv.Decode(fromEntryModels(models))
}

// Commit implements store.Store.
func (s *Store) Commit(ctx context.Context, cs *tokenstore.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := kv.Encode(cs)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	at := time.Now().UTC()
	writes := make([]mongo.WriteModel, len(entries))
	for i, e := range entries {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": e.Key}).
			SetUpdate(bson.M{"$set": bson.M{"value": e.Value, "updated_at": at}}).
			SetUpsert(true)
	}

	col := s.mdb.Collection(colEntries)
	sess, err := col.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("gametoken/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return col.BulkWrite(ctx, writes)
	})
	if err != nil {
		return fmt.Errorf("gametoken/mongo: commit: %w", err)
	}
	return nil
}

// Events implements store.Store.
func (s *Store) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []entryModel
	q := s.mdb.NewFind(&models).
		Filter(eventFilter(opts.After)).
		Sort(bson.D{{Key: "_id", Value: 1}})
	if opts.Kind == "" && opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("gametoken/mongo: list events: %w", err)
	}

	events, err := kv.DecodeEvents(fromEntryModels(models))
	if err != nil {
		return nil, err
	}
	return event.ListOpts{Kind: opts.Kind, Limit: opts.Limit}.Filter(events), nil
}

func stateFilter() bson.M {
	return bson.M{"_id": bson.M{"$not": bson.M{"$regex": "^" + kv.PrefixEvent}}}
}

func eventFilter(after uint64) bson.M {
	from, to := kv.EventRange(after)
	return bson.M{"_id": bson.M{"$gte": from, "$lt": to}}
}
