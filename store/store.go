// Package store defines the persistence contract for token state.
//
// A backend persists the balance table, the allowance table, the fee
// configuration, the administrator, static metadata, and the event log as
// a key-value mapping. Every Commit is all-or-nothing.
package store

import (
	"context"
	"errors"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/types"
)

// Sentinel errors.
var (
	ErrNotInitialized = errors.New("store: no token state persisted")
	ErrStoreClosed    = errors.New("store: store is closed")
)

// Store is the unified storage interface for token state.
type Store interface {
	// Load returns the full persisted state, or ErrNotInitialized when
	// nothing has been committed yet.
	Load(ctx context.Context) (*Snapshot, error)

	// Commit applies cs atomically.
	Commit(ctx context.Context, cs *Changeset) error

	// Events reads the persisted event log in sequence order.
	Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Metadata is the static token description fixed at construction.
type Metadata struct {
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Decimals    uint8        `json:"decimals"`
	TotalSupply types.Amount `json:"total_supply"`
}

// Snapshot is the complete persisted token state.
type Snapshot struct {
	Metadata   Metadata
	Owner      address.Address
	Rate       uint64
	Treasury   address.Address
	Balances   map[address.Address]types.Amount
	Allowances map[book.AllowanceKey]types.Amount
	Exempt     map[address.Address]bool
	Sequence   uint64
}

// NewSnapshot returns an empty Snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Balances:   make(map[address.Address]types.Amount),
		Allowances: make(map[book.AllowanceKey]types.Amount),
		Exempt:     make(map[address.Address]bool),
	}
}

// Changeset carries absolute post-operation values. Nil pointer fields and
// empty maps are left untouched by Commit. Nothing is ever deleted: a
// zero balance or allowance, or a false exemption, is written as such.
type Changeset struct {
	Metadata   *Metadata
	Owner      *address.Address
	Rate       *uint64
	Treasury   *address.Address
	Balances   map[address.Address]types.Amount
	Allowances map[book.AllowanceKey]types.Amount
	Exempt     map[address.Address]bool
	Events     []*event.Event
}

// Sequence returns the sequence of the last event in cs, or 0.
func (cs *Changeset) Sequence() uint64 {
	if len(cs.Events) == 0 {
		return 0
	}
	return cs.Events[len(cs.Events)-1].Sequence
}

// Apply folds cs into s. Backends that keep a decoded snapshot use it, and
// tests use it to model a committed state.
func (s *Snapshot) Apply(cs *Changeset) {
	if cs.Metadata != nil {
		s.Metadata = *cs.Metadata
	}
	if cs.Owner != nil {
		s.Owner = *cs.Owner
	}
	if cs.Rate != nil {
		s.Rate = *cs.Rate
	}
	if cs.Treasury != nil {
		s.Treasury = *cs.Treasury
	}
	for k, v := range cs.Balances {
		s.Balances[k] = v
	}
	for k, v := range cs.Allowances {
		s.Allowances[k] = v
	}
	for k, v := range cs.Exempt {
		s.Exempt[k] = v
	}
	if seq := cs.Sequence(); seq > s.Sequence {
		s.Sequence = seq
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	out.Metadata = s.Metadata
	out.Owner = s.Owner
	out.Rate = s.Rate
	out.Treasury = s.Treasury
	out.Sequence = s.Sequence
	for k, v := range s.Balances {
		out.Balances[k] = v
	}
	for k, v := range s.Allowances {
		out.Allowances[k] = v
	}
	for k, v := range s.Exempt {
		out.Exempt[k] = v
	}
	return out
}
