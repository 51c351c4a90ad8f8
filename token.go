package gametoken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Gametoken-tech/gametoken/access"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/fee"
	"github.com/Gametoken-tech/gametoken/id"
	"github.com/Gametoken-tech/gametoken/plugin"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/types"
)

// Operation names passed to OnOperationRejected.
const (
	OpTransfer           = "transfer"
	OpTransferFrom       = "transfer_from"
	OpApprove            = "approve"
	OpIncreaseAllowance  = "increase_allowance"
	OpDecreaseAllowance  = "decrease_allowance"
	OpSetTransferFeeRate = "set_transfer_fee_rate"
	OpSetTreasury        = "set_treasury"
	OpExcludeFromFee     = "exclude_from_fee"
	OpIncludeForFee      = "include_for_fee"
	OpTransferOwnership  = "transfer_ownership"
)

// Token is the fee-charging token engine.
//
// mu guards every piece of state below it for the whole
// validate, persist, apply sequence of a write. emitMu is taken before mu is
// released so listeners see events in commit order.
type Token struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	mu     sync.RWMutex
	emitMu sync.Mutex

	meta    store.Metadata
	book    *book.Book
	policy  *fee.Policy
	acl     *access.Control
	seq     uint64
	started bool
	genesis *store.Changeset

	// Configuration
	migrate bool
	now     func() time.Time
}

// New validates p and builds the genesis state in memory. Nothing is
// persisted until Start.
func New(s store.Store, p Params, opts ...Option) (*Token, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	policy, err := fee.NewPolicy(p.Treasury, p.TransferFeeRate)
	if err != nil {
		return nil, err
	}
	acl, err := access.New(p.Owner)
	if err != nil {
		return nil, err
	}

	b := book.New()
	tx := b.Begin()
	if err := tx.Credit(p.Holder, p.TotalSupply); err != nil {
		return nil, err
	}
	tx.Commit()

	t := &Token{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		meta: store.Metadata{
			Name:        p.Name,
			Symbol:      p.Symbol,
			Decimals:    p.Decimals,
			TotalSupply: p.TotalSupply,
		},
		book:    b,
		policy:  policy,
		acl:     acl,
		migrate: true,
		now:     time.Now,
	}
	t.genesis = t.genesisChangeset(p)

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Option configures a Token instance.
type Option func(*Token)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Token) {
		t.logger = logger
		t.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(t *Token) {
		_ = t.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin call. A plugin whose hook outlives
// the timeout misses the events dispatched while it is still running.
func WithPluginTimeout(d time.Duration) Option {
	return func(t *Token) {
		t.plugins.WithTimeout(d)
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Token) {
		t.now = now
	}
}

// WithoutMigrate skips store migrations in Start.
func WithoutMigrate() Option {
	return func(t *Token) {
		t.migrate = false
	}
}

// Plugins returns the plugin registry.
func (t *Token) Plugins() *plugin.Registry { return t.plugins }

// Store returns the underlying store.
func (t *Token) Store() store.Store { return t.store }

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Start migrates the store, then either persists the genesis state or
// restores the persisted one. Writes fail with ErrNotStarted until it
// returns successfully.
func (t *Token) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return nil
	}

	if t.migrate {
		if err := t.store.Migrate(ctx); err != nil {
			t.mu.Unlock()
			return err
		}
	}

	var events []*event.Event
	snap, err := t.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotInitialized):
		cs := t.genesis
		t.stamp(cs.Events)
		if err := t.store.Commit(ctx, cs); err != nil {
			t.mu.Unlock()
			return fmt.Errorf("%w: genesis: %w", ErrCommitFailed, err)
		}
		t.seq = cs.Sequence()
		events = cs.Events
	case err != nil:
		t.mu.Unlock()
		return fmt.Errorf("gametoken: load state: %w", err)
	default:
		if err := t.restore(snap); err != nil {
			t.mu.Unlock()
			return err
		}
	}
	t.started = true
	t.genesis = nil

	t.emitMu.Lock()
	t.mu.Unlock()
	t.plugins.Dispatch(ctx, events)
	t.emitMu.Unlock()

	t.plugins.EmitInit(ctx, t)

	t.logger.Info("token started",
		"name", t.meta.Name,
		"symbol", t.meta.Symbol,
		"total_supply", t.meta.TotalSupply.String(),
		"fee_rate", t.policy.Rate(),
		"sequence", t.seq,
		"restored", len(events) == 0,
	)

	return nil
}

// Stop notifies plugins and closes the store. It is a no-op unless the
// Token is started.
func (t *Token) Stop() error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = false
	t.mu.Unlock()

	t.plugins.EmitShutdown(context.Background())

	return t.store.Close()
}

func (t *Token) genesisChangeset(p Params) *store.Changeset {
	meta := t.meta
	owner := p.Owner
	rate := p.TransferFeeRate
	treasury := p.Treasury
	return &store.Changeset{
		Metadata: &meta,
		Owner:    &owner,
		Rate:     &rate,
		Treasury: &treasury,
		Balances: map[address.Address]types.Amount{p.Holder: p.TotalSupply},
		Events:   []*event.Event{event.Transfer(address.Zero, p.Holder, p.TotalSupply, false)},
	}
}

// restore replaces the in-memory state with snap after checking it.
func (t *Token) restore(snap *store.Snapshot) error {
	sum, err := types.Sum(mapValues(snap.Balances)...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStateCorrupt, err)
	}
	if !sum.Equal(snap.Metadata.TotalSupply) {
		return fmt.Errorf("%w: balances sum to %s, supply is %s",
			ErrStateCorrupt, sum, snap.Metadata.TotalSupply)
	}
	if address.IsZero(snap.Treasury) || address.IsZero(snap.Owner) {
		return fmt.Errorf("%w: missing treasury or owner", ErrStateCorrupt)
	}
	if err := fee.ValidateRate(snap.Rate); err != nil {
		return fmt.Errorf("%w: %w", ErrStateCorrupt, err)
	}

	if snap.Metadata.Name != t.meta.Name || snap.Metadata.Symbol != t.meta.Symbol {
		t.logger.Warn("persisted token differs from configured parameters, using persisted state",
			"persisted", snap.Metadata.Symbol,
			"configured", t.meta.Symbol,
		)
	}

	t.meta = snap.Metadata
	t.book.Restore(snap.Balances, snap.Allowances)
	t.policy.Restore(snap.Rate, snap.Treasury, snap.Exempt)
	t.acl.SetOwner(snap.Owner)
	t.seq = snap.Sequence
	return nil
}

func mapValues(m map[address.Address]types.Amount) []types.Amount {
	out := make([]types.Amount, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// ──────────────────────────────────────────────────
// Write path
// ──────────────────────────────────────────────────

// mutation stages an operation on tx. It returns the changeset to persist
// (balances and allowances are filled from tx) and an optional apply func
// that updates the fee policy or access control once the commit succeeded.
type mutation func(tx *book.Tx) (*store.Changeset, func(), error)

// execute runs fn under the state lock, persists its changeset, applies it,
// then dispatches its events in commit order.
func (t *Token) execute(ctx context.Context, op string, fn mutation) error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		t.reject(ctx, op, ErrNotStarted)
		return ErrNotStarted
	}

	tx := t.book.Begin()
	cs, apply, err := fn(tx)
	if err != nil {
		t.mu.Unlock()
		t.reject(ctx, op, err)
		return err
	}
	cs.Balances = tx.Balances()
	cs.Allowances = tx.Allowances()
	t.stamp(cs.Events)

	if err := t.store.Commit(ctx, cs); err != nil {
		t.mu.Unlock()
		err = fmt.Errorf("%w: %s: %w", ErrCommitFailed, op, err)
		t.logger.Error("commit failed", "op", op, "error", err)
		t.reject(ctx, op, err)
		return err
	}

	tx.Commit()
	if apply != nil {
		apply()
	}
	if seq := cs.Sequence(); seq > 0 {
		t.seq = seq
	}

	t.emitMu.Lock()
	t.mu.Unlock()
	t.plugins.Dispatch(ctx, cs.Events)
	t.emitMu.Unlock()

	return nil
}

// stamp assigns identifiers, sequence numbers, and a shared timestamp.
// t.seq is advanced by the caller only after a successful commit.
func (t *Token) stamp(events []*event.Event) {
	opID := id.NewOperationID()
	at := t.now().UTC()
	for i, evt := range events {
		evt.ID = id.NewEventID()
		evt.OperationID = opID
		evt.Sequence = t.seq + uint64(i) + 1
		evt.Timestamp = at
	}
}

func (t *Token) reject(ctx context.Context, op string, err error) {
	t.logger.Debug("operation rejected", "op", op, "error", err)
	t.plugins.EmitOperationRejected(ctx, op, err)
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Name returns the token name.
func (t *Token) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Name
}

// Symbol returns the token symbol.
func (t *Token) Symbol() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Symbol
}

// Decimals returns the display precision.
func (t *Token) Decimals() uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Decimals
}

// TotalSupply returns the fixed supply in smallest units.
func (t *Token) TotalSupply() types.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.TotalSupply
}

// BalanceOf returns the balance of account, zero if unknown.
func (t *Token) BalanceOf(account address.Address) types.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.book.BalanceOf(account)
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender address.Address) types.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.book.Allowance(owner, spender)
}

// Treasury returns the fee recipient.
func (t *Token) Treasury() address.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.Treasury()
}

// TransferFeeRate returns the fee numerator.
func (t *Token) TransferFeeRate() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.Rate()
}

// TransferFeeDenominator returns the fixed fee denominator.
func (t *Token) TransferFeeDenominator() uint64 { return fee.Denominator }

// ExcludedFromFee reports whether account is exempt from fees.
func (t *Token) ExcludedFromFee(account address.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.IsExcluded(account)
}

// ExcludedAccounts returns the exempt accounts in address order.
func (t *Token) ExcludedAccounts() []address.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.Excluded()
}

// Owner returns the administrator.
func (t *Token) Owner() address.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.acl.Owner()
}

// Sequence returns the sequence number of the last committed event.
func (t *Token) Sequence() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq
}

// Events reads the persisted event log.
func (t *Token) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	return t.store.Events(ctx, opts)
}
