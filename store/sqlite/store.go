package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/Gametoken-tech/gametoken/event"
	tokenstore "github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
)

// compile-time interface check
var _ tokenstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("gametoken/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("gametoken/sqlite: migration failed: %w", err)
	}
	return nil
}

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
	err := s.sdb.NewSelect(&models).
		Where("entry_key NOT LIKE ?", kv.PrefixEvent+"%").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("gametoken/sqlite: load state: %w", err)
	}
	return kv.Decode(fromEntryModels(models))
}

// Commit writes every entry of cs in a single upsert statement.
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

	models := toEntryModels(entries, time.Now().UTC())
	_, err = s.sdb.NewInsert(&models).
		OnConflict("(entry_key) DO UPDATE").
		Set("entry_value = EXCLUDED.entry_value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("gametoken/sqlite: commit: %w", err)
	}
	return nil
}

// Events implements store.Store.
func (s *Store) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	from, to := kv.EventRange(opts.After)

	var models []entryModel
	q := s.sdb.NewSelect(&models).
		Where("entry_key >= ?", from).
		Where("entry_key < ?", to).
		OrderExpr("entry_key ASC")
	if opts.Kind == "" && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("gametoken/sqlite: list events: %w", err)
	}

	events, err := kv.DecodeEvents(fromEntryModels(models))
	if err != nil {
		return nil, err
	}
	return event.ListOpts{Kind: opts.Kind, Limit: opts.Limit}.Filter(events), nil
}
