// Package storetest is a conformance suite every store.Store backend runs
// from its own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/id"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/types"
)

// Fixture accounts.
var (
	Owner    = address.MustParse("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	Treasury = address.MustParse("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	Alice    = address.MustParse("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db")
	Bob      = address.MustParse("0x78731D3Ca6b7E34aC0F824c42a7cC18A495cabaB")
)

// Genesis returns a changeset equivalent to a freshly constructed token.
func Genesis() *store.Changeset {
	rate := uint64(100)
	supply := types.MustUnits(16_000_000, 18)
	return &store.Changeset{
		Metadata: &store.Metadata{Name: "GameToken", Symbol: "GAME", Decimals: 18, TotalSupply: supply},
		Owner:    &Owner,
		Rate:     &rate,
		Treasury: &Treasury,
		Balances: map[address.Address]types.Amount{Treasury: supply},
		Events:   []*event.Event{stamp(event.Transfer(address.Zero, Treasury, supply, false), 1)},
	}
}

func stamp(evt *event.Event, seq uint64) *event.Event {
	evt.ID = id.NewEventID()
	evt.OperationID = id.NewOperationID()
	evt.Sequence = seq
	return evt
}

// Run exercises a backend. newStore must return an empty, migrated store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("LoadEmpty", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(context.Background())
		require.ErrorIs(t, err, store.ErrNotInitialized)
		require.NoError(t, s.Ping(context.Background()))
	})

	t.Run("CommitAndLoad", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Commit(ctx, Genesis()))

		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "GameToken", snap.Metadata.Name)
		assert.Equal(t, "GAME", snap.Metadata.Symbol)
		assert.Equal(t, uint8(18), snap.Metadata.Decimals)
		assert.Equal(t, types.MustUnits(16_000_000, 18), snap.Metadata.TotalSupply)
		assert.Equal(t, Owner, snap.Owner)
		assert.Equal(t, Treasury, snap.Treasury)
		assert.Equal(t, uint64(100), snap.Rate)
		assert.Equal(t, types.MustUnits(16_000_000, 18), snap.Balances[Treasury])
		assert.Equal(t, uint64(1), snap.Sequence)
	})

	t.Run("IncrementalCommits", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Commit(ctx, Genesis()))

		supply := types.MustUnits(16_000_000, 18)
		feeAmt := types.NewAmount(100)
		net := types.NewAmount(9900)
		remaining, err := supply.Sub(types.NewAmount(10000))
		require.NoError(t, err)
		treasuryBal, err := remaining.Add(feeAmt)
		require.NoError(t, err)

		require.NoError(t, s.Commit(ctx, &store.Changeset{
			Balances: map[address.Address]types.Amount{Treasury: treasuryBal, Alice: net},
			Events: []*event.Event{
				stamp(event.Transfer(Treasury, Treasury, feeAmt, true), 2),
				stamp(event.Transfer(Treasury, Alice, net, false), 3),
			},
		}))

		newRate := uint64(250)
		require.NoError(t, s.Commit(ctx, &store.Changeset{
			Rate:       &newRate,
			Treasury:   &Bob,
			Owner:      &Alice,
			Allowances: map[book.AllowanceKey]types.Amount{{Owner: Alice, Spender: Bob}: types.NewAmount(7)},
			Exempt:     map[address.Address]bool{Alice: true, Bob: false},
			Events: []*event.Event{
				stamp(event.TransferFeeRateUpdated(250), 4),
				stamp(event.Approval(Alice, Bob, types.NewAmount(7)), 5),
			},
		}))

		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, treasuryBal, snap.Balances[Treasury])
		assert.Equal(t, net, snap.Balances[Alice])
		assert.Equal(t, uint64(250), snap.Rate)
		assert.Equal(t, Bob, snap.Treasury)
		assert.Equal(t, Alice, snap.Owner)
		assert.Equal(t, types.NewAmount(7), snap.Allowances[book.AllowanceKey{Owner: Alice, Spender: Bob}])
		assert.True(t, snap.Exempt[Alice])
		assert.False(t, snap.Exempt[Bob])
		assert.Equal(t, uint64(5), snap.Sequence)

		total, err := types.Sum(snap.Balances[Treasury], snap.Balances[Alice])
		require.NoError(t, err)
		assert.Equal(t, supply, total)
	})

	t.Run("Events", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Commit(ctx, Genesis()))
		require.NoError(t, s.Commit(ctx, &store.Changeset{
			Events: []*event.Event{
				stamp(event.ExcludedFromFee(Alice), 2),
				stamp(event.Transfer(Treasury, Alice, types.NewAmount(3), false), 3),
				stamp(event.IncludedForFee(Alice), 4),
			},
		}))

		all, err := s.Events(ctx, event.ListOpts{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		for i, evt := range all {
			assert.Equal(t, uint64(i+1), evt.Sequence)
		}
		assert.Equal(t, event.KindTransfer, all[0].Kind)
		assert.Equal(t, address.Zero, all[0].From)

		after, err := s.Events(ctx, event.ListOpts{After: 2})
		require.NoError(t, err)
		require.Len(t, after, 2)
		assert.Equal(t, uint64(3), after[0].Sequence)

		transfers, err := s.Events(ctx, event.ListOpts{Kind: event.KindTransfer})
		require.NoError(t, err)
		require.Len(t, transfers, 2)

		limited, err := s.Events(ctx, event.ListOpts{Limit: 1, After: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, event.KindExcludedFromFee, limited[0].Kind)
		assert.Equal(t, Alice, limited[0].Account)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.Error(t, s.Commit(ctx, Genesis()))

		_, err := s.Load(context.Background())
		require.ErrorIs(t, err, store.ErrNotInitialized)
	})
}
