package gametoken_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/memory"
	"github.com/Gametoken-tech/gametoken/store/storetest"
	"github.com/Gametoken-tech/gametoken/types"
)

var (
	owner    = storetest.Owner
	treasury = storetest.Treasury
	alice    = storetest.Alice
	bob      = storetest.Bob
	carol    = address.MustParse("0x617F2E2fD72FD9D5503197092aC168c91465E7f2")

	accounts = []address.Address{owner, treasury, alice, bob, carol}
)

// recorder captures dispatched events and rejections.
type recorder struct {
	mu       sync.Mutex
	events   []*event.Event
	rejected []string
	errs     []error
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnEvent(_ context.Context, evt *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *evt
	r.events = append(r.events, &cp)
	return nil
}

func (r *recorder) OnOperationRejected(_ context.Context, op string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, op)
	r.errs = append(r.errs, err)
	return nil
}

func (r *recorder) since(n int) []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*event.Event, len(r.events)-n)
	copy(out, r.events[n:])
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

var errBoom = errors.New("boom")

// failingStore fails every Commit while fail is set.
type failingStore struct {
	*memory.Store
	fail atomic.Bool
}

func (s *failingStore) Commit(ctx context.Context, cs *store.Changeset) error {
	if s.fail.Load() {
		return errBoom
	}
	return s.Store.Commit(ctx, cs)
}

func amt(n uint64) types.Amount { return types.NewAmount(n) }

func sub(t *testing.T, a, b types.Amount) types.Amount {
	t.Helper()
	out, err := a.Sub(b)
	require.NoError(t, err)
	return out
}

func start(t *testing.T, s store.Store, p gametoken.Params, opts ...gametoken.Option) (*gametoken.Token, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]gametoken.Option{gametoken.WithPlugin(rec)}, opts...)
	tok, err := gametoken.New(s, p, opts...)
	require.NoError(t, err)
	require.NoError(t, tok.Start(context.Background()))
	return tok, rec
}

func newGameToken(t *testing.T, rate uint64) (*gametoken.Token, *recorder) {
	t.Helper()
	return start(t, memory.New(), gametoken.GameToken(owner, treasury, rate))
}

func requireSupplyInvariant(t *testing.T, tok *gametoken.Token) {
	t.Helper()
	balances := make([]types.Amount, len(accounts))
	for i, a := range accounts {
		balances[i] = tok.BalanceOf(a)
	}
	total, err := types.Sum(balances...)
	require.NoError(t, err)
	require.Equal(t, tok.TotalSupply(), total)
}

// ──────────────────────────────────────────────────
// Construction
// ──────────────────────────────────────────────────

func TestDeploymentMetadata(t *testing.T) {
	t.Run("GameToken", func(t *testing.T) {
		tok, rec := newGameToken(t, gametoken.DefaultFeeRate)

		assert.Equal(t, "GameToken", tok.Name())
		assert.Equal(t, "GAME", tok.Symbol())
		assert.Equal(t, uint8(18), tok.Decimals())
		assert.Equal(t, types.MustUnits(16_000_000, 18), tok.TotalSupply())
		assert.Equal(t, tok.TotalSupply(), tok.BalanceOf(treasury))
		assert.Equal(t, treasury, tok.Treasury())
		assert.Equal(t, owner, tok.Owner())
		assert.Equal(t, uint64(100), tok.TransferFeeRate())
		assert.Equal(t, uint64(10000), tok.TransferFeeDenominator())
		assert.Empty(t, tok.ExcludedAccounts())

		genesis := rec.since(0)
		require.Len(t, genesis, 1)
		assert.Equal(t, event.KindTransfer, genesis[0].Kind)
		assert.Equal(t, address.Zero, genesis[0].From)
		assert.Equal(t, treasury, genesis[0].To)
		assert.Equal(t, tok.TotalSupply(), genesis[0].Amount)
		assert.Equal(t, uint64(1), genesis[0].Sequence)
	})

	t.Run("CreditToken", func(t *testing.T) {
		tok, _ := start(t, memory.New(), gametoken.CreditToken(owner, treasury, gametoken.DefaultFeeRate))

		assert.Equal(t, "CreditToken", tok.Name())
		assert.Equal(t, "CREDIT", tok.Symbol())
		assert.Equal(t, types.MustParseAmount("1000000000000000000000000000000000000"), tok.TotalSupply())
		assert.Equal(t, tok.TotalSupply(), tok.BalanceOf(owner))
		assert.True(t, tok.BalanceOf(treasury).IsZero())
	})
}

func TestConstructionFailures(t *testing.T) {
	tests := []struct {
		name   string
		params gametoken.Params
		want   error
	}{
		{"zero treasury", gametoken.GameToken(owner, address.Zero, 100), gametoken.ErrInvalidTreasury},
		{"rate above denominator", gametoken.GameToken(owner, treasury, 10001), gametoken.ErrInvalidFeeRate},
		{"zero owner", gametoken.GameToken(address.Zero, treasury, 100), gametoken.ErrInvalidOwner},
		{"zero holder", gametoken.CreditToken(address.Zero, treasury, 100), gametoken.ErrInvalidHolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := gametoken.New(memory.New(), tt.params)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, tok)
			assert.True(t, gametoken.IsValidationError(err))
		})
	}

	t.Run("full rate accepted", func(t *testing.T) {
		_, err := gametoken.New(memory.New(), gametoken.GameToken(owner, treasury, 10000))
		require.NoError(t, err)
	})
}

func TestWritesBeforeStart(t *testing.T) {
	tok, err := gametoken.New(memory.New(), gametoken.GameToken(owner, treasury, 100))
	require.NoError(t, err)

	assert.Equal(t, tok.TotalSupply(), tok.BalanceOf(treasury))
	err = tok.Transfer(context.Background(), treasury, alice, amt(1))
	require.ErrorIs(t, err, gametoken.ErrNotStarted)
	assert.True(t, gametoken.IsRetryable(err))
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

func TestTransferFeeSplit(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)
	supply := tok.TotalSupply()

	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))

	// The treasury pays itself the fee leg.
	assert.Equal(t, amt(9900), tok.BalanceOf(alice))
	assert.Equal(t, sub(t, supply, amt(9900)), tok.BalanceOf(treasury))

	events := rec.since(1)
	require.Len(t, events, 2)
	assert.Equal(t, treasury, events[0].From)
	assert.Equal(t, treasury, events[0].To)
	assert.Equal(t, amt(100), events[0].Amount)
	assert.True(t, events[0].Fee)
	assert.Equal(t, alice, events[1].To)
	assert.Equal(t, amt(9900), events[1].Amount)
	assert.False(t, events[1].Fee)
	assert.Equal(t, events[0].OperationID, events[1].OperationID)
	assert.Equal(t, uint64(2), events[0].Sequence)
	assert.Equal(t, uint64(3), events[1].Sequence)

	require.NoError(t, tok.Transfer(ctx, alice, bob, amt(5000)))
	assert.Equal(t, amt(4900), tok.BalanceOf(alice))
	assert.Equal(t, amt(4950), tok.BalanceOf(bob))
	assert.Equal(t, sub(t, supply, amt(9850)), tok.BalanceOf(treasury))

	requireSupplyInvariant(t, tok)
}

func TestFeeIsFloored(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)

	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(1000)))
	n := rec.count()

	// 99 * 100 / 10000 rounds down to zero: one event, no fee.
	require.NoError(t, tok.Transfer(ctx, alice, bob, amt(99)))
	events := rec.since(n)
	require.Len(t, events, 1)
	assert.Equal(t, amt(99), tok.BalanceOf(bob))

	// 199 * 100 / 10000 = 1.99, floored to 1.
	require.NoError(t, tok.Transfer(ctx, alice, carol, amt(199)))
	assert.Equal(t, amt(198), tok.BalanceOf(carol))
	requireSupplyInvariant(t, tok)
}

func TestZeroRateSingleEvent(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 0)

	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))
	events := rec.since(1)
	require.Len(t, events, 1)
	assert.Equal(t, amt(10000), events[0].Amount)
	assert.Equal(t, amt(10000), tok.BalanceOf(alice))
}

func TestZeroAmountTransfer(t *testing.T) {
	tok, rec := newGameToken(t, 100)

	require.NoError(t, tok.Transfer(context.Background(), alice, bob, amt(0)))
	events := rec.since(1)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.IsZero())
}

func TestExemptAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("sender exempt", func(t *testing.T) {
		tok, _ := newGameToken(t, 100)
		require.NoError(t, tok.ExcludeFromFee(ctx, owner, treasury))
		require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))
		assert.Equal(t, amt(10000), tok.BalanceOf(alice))
		requireSupplyInvariant(t, tok)
	})

	t.Run("recipient exempt", func(t *testing.T) {
		tok, rec := newGameToken(t, 100)
		require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))
		require.NoError(t, tok.ExcludeFromFee(ctx, owner, bob))
		n := rec.count()

		require.NoError(t, tok.Transfer(ctx, alice, bob, amt(5000)))
		assert.Equal(t, amt(5000), tok.BalanceOf(bob))
		require.Len(t, rec.since(n), 1)
	})

	t.Run("included again pays fees", func(t *testing.T) {
		tok, _ := newGameToken(t, 100)
		require.NoError(t, tok.ExcludeFromFee(ctx, owner, treasury))
		require.NoError(t, tok.IncludeForFee(ctx, owner, treasury))
		assert.False(t, tok.ExcludedFromFee(treasury))

		require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))
		assert.Equal(t, amt(9900), tok.BalanceOf(alice))
	})
}

func TestTransferRejections(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(1000)))
	n := rec.count()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"to zero address", func() error { return tok.Transfer(ctx, alice, address.Zero, amt(1)) }, gametoken.ErrZeroAddressRecipient},
		{"from zero address", func() error { return tok.Transfer(ctx, address.Zero, bob, amt(1)) }, gametoken.ErrZeroAddressSender},
		{"recipient checked first", func() error { return tok.Transfer(ctx, address.Zero, address.Zero, amt(1)) }, gametoken.ErrZeroAddressRecipient},
		{"exceeds balance", func() error { return tok.Transfer(ctx, alice, bob, amt(991)) }, gametoken.ErrInsufficientBalance},
		{"empty account", func() error { return tok.Transfer(ctx, carol, bob, amt(1)) }, gametoken.ErrInsufficientBalance},
		{"transferFrom without allowance", func() error { return tok.TransferFrom(ctx, bob, alice, carol, amt(1)) }, gametoken.ErrInsufficientAllowance},
		{"transferFrom zero sender", func() error { return tok.TransferFrom(ctx, bob, address.Zero, carol, amt(1)) }, gametoken.ErrZeroAddressSender},
		{"transferFrom zero recipient", func() error { return tok.TransferFrom(ctx, bob, alice, address.Zero, amt(1)) }, gametoken.ErrZeroAddressRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, tt.want)
			assert.True(t, gametoken.IsValidationError(err))
		})
	}

	assert.Equal(t, amt(990), tok.BalanceOf(alice))
	assert.True(t, tok.BalanceOf(bob).IsZero())
	assert.Equal(t, n, rec.count())
	assert.Len(t, rec.rejected, len(tests))
	requireSupplyInvariant(t, tok)
}

func TestTransferFromDecrementsGross(t *testing.T) {
	ctx := context.Background()
	tok, _ := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(20000)))
	treasuryBefore := tok.BalanceOf(treasury)

	require.NoError(t, tok.Approve(ctx, alice, bob, amt(1500)))
	assert.Equal(t, amt(1500), tok.Allowance(alice, bob))

	require.NoError(t, tok.TransferFrom(ctx, bob, alice, carol, amt(1000)))
	assert.Equal(t, amt(500), tok.Allowance(alice, bob))
	assert.Equal(t, amt(990), tok.BalanceOf(carol))
	assert.Equal(t, amt(18800), tok.BalanceOf(alice))

	fees, err := tok.BalanceOf(treasury).Sub(treasuryBefore)
	require.NoError(t, err)
	assert.Equal(t, amt(10), fees)

	// Allowance is checked before balance and survives a failed attempt.
	err = tok.TransferFrom(ctx, bob, alice, carol, amt(501))
	require.ErrorIs(t, err, gametoken.ErrInsufficientAllowance)
	assert.Equal(t, amt(500), tok.Allowance(alice, bob))

	requireSupplyInvariant(t, tok)
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	ctx := context.Background()
	tok, _ := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(100)))
	require.NoError(t, tok.Approve(ctx, alice, bob, amt(1000)))

	err := tok.TransferFrom(ctx, bob, alice, carol, amt(500))
	require.ErrorIs(t, err, gametoken.ErrInsufficientBalance)
	assert.Equal(t, amt(1000), tok.Allowance(alice, bob))
	assert.Equal(t, amt(99), tok.BalanceOf(alice))
}

// ──────────────────────────────────────────────────
// Allowances
// ──────────────────────────────────────────────────

func TestAllowances(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)

	require.ErrorIs(t, tok.Approve(ctx, alice, address.Zero, amt(1)), gametoken.ErrInvalidRecipient)
	require.ErrorIs(t, tok.Approve(ctx, address.Zero, bob, amt(1)), gametoken.ErrZeroAddressSender)

	n := rec.count()
	require.NoError(t, tok.Approve(ctx, alice, bob, amt(100)))
	require.NoError(t, tok.Approve(ctx, alice, bob, amt(40)))
	assert.Equal(t, amt(40), tok.Allowance(alice, bob))

	require.NoError(t, tok.IncreaseAllowance(ctx, alice, bob, amt(60)))
	assert.Equal(t, amt(100), tok.Allowance(alice, bob))

	require.NoError(t, tok.DecreaseAllowance(ctx, alice, bob, amt(30)))
	assert.Equal(t, amt(70), tok.Allowance(alice, bob))

	err := tok.DecreaseAllowance(ctx, alice, bob, amt(71))
	require.ErrorIs(t, err, gametoken.ErrAllowanceBelowZero)
	assert.Equal(t, amt(70), tok.Allowance(alice, bob))

	events := rec.since(n)
	require.Len(t, events, 4)
	for _, evt := range events {
		assert.Equal(t, event.KindApproval, evt.Kind)
		assert.Equal(t, alice, evt.Owner())
		assert.Equal(t, bob, evt.Spender())
	}
	assert.Equal(t, amt(100), events[2].Amount)
	assert.Equal(t, amt(70), events[3].Amount)
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

func TestAdministrationRequiresOwner(t *testing.T) {
	ctx := context.Background()
	tok, _ := newGameToken(t, 100)

	// Invalid arguments from a non-owner still report Unauthorized.
	require.ErrorIs(t, tok.SetTransferFeeRate(ctx, alice, 20000), gametoken.ErrUnauthorized)
	require.ErrorIs(t, tok.SetTreasury(ctx, alice, address.Zero), gametoken.ErrUnauthorized)
	require.ErrorIs(t, tok.ExcludeFromFee(ctx, treasury, alice), gametoken.ErrUnauthorized)
	require.ErrorIs(t, tok.IncludeForFee(ctx, alice, alice), gametoken.ErrUnauthorized)
	require.ErrorIs(t, tok.TransferOwnership(ctx, alice, alice), gametoken.ErrUnauthorized)

	assert.Equal(t, uint64(100), tok.TransferFeeRate())
	assert.Equal(t, treasury, tok.Treasury())
	assert.False(t, tok.ExcludedFromFee(alice))
	assert.Equal(t, owner, tok.Owner())
}

func TestAdministrationValidation(t *testing.T) {
	ctx := context.Background()
	tok, _ := newGameToken(t, 100)

	require.ErrorIs(t, tok.SetTransferFeeRate(ctx, owner, 10001), gametoken.ErrInvalidFeeRate)
	require.ErrorIs(t, tok.SetTreasury(ctx, owner, address.Zero), gametoken.ErrInvalidTreasury)
	require.ErrorIs(t, tok.IncludeForFee(ctx, owner, alice), gametoken.ErrNotExcluded)
	require.NoError(t, tok.ExcludeFromFee(ctx, owner, alice))
	require.ErrorIs(t, tok.ExcludeFromFee(ctx, owner, alice), gametoken.ErrAlreadyExcluded)
	require.ErrorIs(t, tok.TransferOwnership(ctx, owner, address.Zero), gametoken.ErrInvalidOwner)
}

func TestFeeAfterRateChange(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(100000)))

	n := rec.count()
	require.NoError(t, tok.SetTransferFeeRate(ctx, owner, 500))
	events := rec.since(n)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindTransferFeeRateUpdated, events[0].Kind)
	assert.Equal(t, uint64(500), events[0].Rate)

	require.NoError(t, tok.Transfer(ctx, alice, bob, amt(10000)))
	assert.Equal(t, amt(9500), tok.BalanceOf(bob))

	require.NoError(t, tok.SetTransferFeeRate(ctx, owner, 10000))
	require.NoError(t, tok.Transfer(ctx, alice, carol, amt(1000)))
	assert.True(t, tok.BalanceOf(carol).IsZero())
	requireSupplyInvariant(t, tok)
}

func TestFeeToNewTreasury(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(100000)))

	n := rec.count()
	require.NoError(t, tok.SetTreasury(ctx, owner, carol))
	events := rec.since(n)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindTreasuryUpdated, events[0].Kind)
	assert.Equal(t, carol, events[0].Account)

	require.NoError(t, tok.Transfer(ctx, alice, bob, amt(10000)))
	assert.Equal(t, amt(100), tok.BalanceOf(carol))
	assert.Equal(t, amt(9900), tok.BalanceOf(bob))
	requireSupplyInvariant(t, tok)
}

func TestTransferOwnership(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)

	n := rec.count()
	require.NoError(t, tok.TransferOwnership(ctx, owner, alice))
	assert.Equal(t, alice, tok.Owner())

	events := rec.since(n)
	require.Len(t, events, 1)
	assert.Equal(t, owner, events[0].From)
	assert.Equal(t, alice, events[0].To)

	require.ErrorIs(t, tok.SetTransferFeeRate(ctx, owner, 1), gametoken.ErrUnauthorized)
	require.NoError(t, tok.SetTransferFeeRate(ctx, alice, 1))
}

// ──────────────────────────────────────────────────
// Atomicity and persistence
// ──────────────────────────────────────────────────

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: memory.New()}
	tok, rec := start(t, fs, gametoken.GameToken(owner, treasury, 100))
	require.NoError(t, tok.Approve(ctx, treasury, bob, amt(5000)))
	n := rec.count()
	seq := tok.Sequence()

	fs.fail.Store(true)

	err := tok.Transfer(ctx, treasury, alice, amt(10000))
	require.ErrorIs(t, err, gametoken.ErrCommitFailed)
	require.ErrorIs(t, err, errBoom)
	assert.True(t, gametoken.IsRetryable(err))

	require.ErrorIs(t, tok.TransferFrom(ctx, bob, treasury, alice, amt(1000)), gametoken.ErrCommitFailed)
	require.ErrorIs(t, tok.SetTransferFeeRate(ctx, owner, 300), gametoken.ErrCommitFailed)
	require.ErrorIs(t, tok.SetTreasury(ctx, owner, carol), gametoken.ErrCommitFailed)
	require.ErrorIs(t, tok.ExcludeFromFee(ctx, owner, alice), gametoken.ErrCommitFailed)
	require.ErrorIs(t, tok.TransferOwnership(ctx, owner, alice), gametoken.ErrCommitFailed)

	assert.Equal(t, tok.TotalSupply(), tok.BalanceOf(treasury))
	assert.True(t, tok.BalanceOf(alice).IsZero())
	assert.Equal(t, amt(5000), tok.Allowance(treasury, bob))
	assert.Equal(t, uint64(100), tok.TransferFeeRate())
	assert.Equal(t, treasury, tok.Treasury())
	assert.False(t, tok.ExcludedFromFee(alice))
	assert.Equal(t, owner, tok.Owner())
	assert.Equal(t, seq, tok.Sequence())
	assert.Equal(t, n, rec.count())
	assert.Equal(t, []string{
		gametoken.OpTransfer,
		gametoken.OpTransferFrom,
		gametoken.OpSetTransferFeeRate,
		gametoken.OpSetTreasury,
		gametoken.OpExcludeFromFee,
		gametoken.OpTransferOwnership,
	}, rec.rejected)

	fs.fail.Store(false)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))

	events, err := tok.Events(ctx, event.ListOpts{After: seq})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, seq+1, events[0].Sequence)
}

func TestRestartRestoresState(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	first, _ := start(t, s, gametoken.GameToken(owner, treasury, 100))

	require.NoError(t, first.Transfer(ctx, treasury, alice, amt(10000)))
	require.NoError(t, first.ExcludeFromFee(ctx, owner, bob))
	require.NoError(t, first.SetTransferFeeRate(ctx, owner, 250))
	require.NoError(t, first.Approve(ctx, alice, bob, amt(5)))

	second, rec := start(t, s, gametoken.GameToken(owner, treasury, 100))
	assert.Empty(t, rec.since(0))

	for _, a := range accounts {
		assert.Equal(t, first.BalanceOf(a), second.BalanceOf(a))
	}
	assert.Equal(t, uint64(250), second.TransferFeeRate())
	assert.True(t, second.ExcludedFromFee(bob))
	assert.Equal(t, amt(5), second.Allowance(alice, bob))
	assert.Equal(t, first.Sequence(), second.Sequence())

	require.NoError(t, second.Transfer(ctx, alice, carol, amt(1000)))
	events, err := second.Events(ctx, event.ListOpts{})
	require.NoError(t, err)
	for i, evt := range events {
		assert.Equal(t, uint64(i+1), evt.Sequence)
	}
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Commit(ctx, storetest.Genesis()))
	require.NoError(t, s.Commit(ctx, &store.Changeset{
		Balances: map[address.Address]types.Amount{alice: amt(5)},
	}))

	tok, err := gametoken.New(s, gametoken.GameToken(owner, treasury, 100))
	require.NoError(t, err)
	require.ErrorIs(t, tok.Start(ctx), gametoken.ErrStateCorrupt)
}

func TestEventMetadata(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	tok, rec := start(t, memory.New(), gametoken.GameToken(owner, treasury, 100),
		gametoken.WithClock(func() time.Time { return at }))

	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(10000)))
	for _, evt := range rec.since(0) {
		assert.Equal(t, at.UTC(), evt.Timestamp)
		assert.False(t, evt.ID.IsNil())
		assert.False(t, evt.OperationID.IsNil())
	}
}

// countingStore counts lifecycle calls.
type countingStore struct {
	*memory.Store
	migrations atomic.Int32
	closes     atomic.Int32
}

func (s *countingStore) Migrate(ctx context.Context) error {
	s.migrations.Add(1)
	return s.Store.Migrate(ctx)
}

func (s *countingStore) Close() error {
	s.closes.Add(1)
	return s.Store.Close()
}

func TestRepeatedStartAndStop(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{Store: memory.New()}

	tok, err := gametoken.New(cs, gametoken.GameToken(owner, treasury, 100))
	require.NoError(t, err)
	require.NoError(t, tok.Stop())
	assert.Equal(t, int32(0), cs.closes.Load())

	require.NoError(t, tok.Start(ctx))
	require.NoError(t, tok.Start(ctx))
	assert.Equal(t, int32(1), cs.migrations.Load())

	require.NoError(t, tok.Stop())
	require.NoError(t, tok.Stop())
	assert.Equal(t, int32(1), cs.closes.Load())
}

func TestStopRejectsWrites(t *testing.T) {
	tok, _ := newGameToken(t, 100)
	require.NoError(t, tok.Stop())
	require.ErrorIs(t, tok.Transfer(context.Background(), treasury, alice, amt(1)), gametoken.ErrNotStarted)
}

// ──────────────────────────────────────────────────
// Concurrency
// ──────────────────────────────────────────────────

func TestConcurrentTransfersKeepOrderAndSupply(t *testing.T) {
	ctx := context.Background()
	tok, rec := newGameToken(t, 100)
	require.NoError(t, tok.Transfer(ctx, treasury, alice, amt(1_000_000)))
	require.NoError(t, tok.Transfer(ctx, treasury, bob, amt(1_000_000)))

	const workers = 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := alice, bob
			if i%2 == 1 {
				from, to = bob, alice
			}
			assert.NoError(t, tok.Transfer(ctx, from, to, amt(1000)))
			_ = tok.BalanceOf(from)
		}(i)
	}
	wg.Wait()

	requireSupplyInvariant(t, tok)

	events := rec.since(0)
	require.Len(t, events, 1+4+workers*2)
	for i, evt := range events {
		assert.Equal(t, uint64(i+1), evt.Sequence)
	}
	// Each fee leg is immediately followed by its net leg.
	for i := 5; i < len(events); i += 2 {
		assert.True(t, events[i].Fee)
		assert.Equal(t, events[i].OperationID, events[i+1].OperationID)
	}
}
