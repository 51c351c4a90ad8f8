package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/Gametoken-tech/gametoken/event"
	tokenstore "github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
)

// compile-time interface check
var _ tokenstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("gametoken/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("gametoken/postgres: migration failed: %w", err)
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
	err := s.pg.NewSelect(&models).
		Where("entry_key NOT LIKE $1", kv.PrefixEvent+"%").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("gametoken/postgres: load state: %w", err)
	}
	return kv.Decode(fromEntryModels(models))
}

// Commit writes every entry of cs in one INSERT ... ON CONFLICT statement,
// which PostgreSQL applies atomically.
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
	_, err = s.pg.NewInsert(&models).
		OnConflict("(entry_key) DO UPDATE").
		Set("entry_value = EXCLUDED.entry_value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("gametoken/postgres: commit: %w", err)
	}
	return nil
}

// Events implements store.Store.
func (s *Store) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	from, to := kv.EventRange(opts.After)

	var models []entryModel
	q := s.pg.NewSelect(&models).
		Where("entry_key >= $1", from).
		Where("entry_key < $2", to).
		OrderExpr("entry_key ASC")
	if opts.Kind == "" && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("gametoken/postgres: list events: %w", err)
	}

	events, err := kv.DecodeEvents(fromEntryModels(models))
	if err != nil {
		return nil, err
	}
	return event.ListOpts{Kind: opts.Kind, Limit: opts.Limit}.Filter(events), nil
}
