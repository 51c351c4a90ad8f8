package kv_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/id"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/kv"
	"github.com/Gametoken-tech/gametoken/types"
)

var (
	owner    = address.MustParse("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	treasury = address.MustParse("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	spender  = address.MustParse("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db")
)

func genesis() *store.Changeset {
	rate := uint64(100)
	supply := types.MustUnits(16_000_000, 18)
	evt := event.Transfer(address.Zero, treasury, supply, false)
	evt.ID = id.NewEventID()
	evt.OperationID = id.NewOperationID()
	evt.Sequence = 1

	return &store.Changeset{
		Metadata:   &store.Metadata{Name: "GameToken", Symbol: "GAME", Decimals: 18, TotalSupply: supply},
		Owner:      &owner,
		Rate:       &rate,
		Treasury:   &treasury,
		Balances:   map[address.Address]types.Amount{treasury: supply},
		Allowances: map[book.AllowanceKey]types.Amount{{Owner: treasury, Spender: spender}: types.NewAmount(5)},
		Exempt:     map[address.Address]bool{spender: true},
		Events:     []*event.Event{evt},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cs := genesis()
	entries, err := kv.Encode(cs)
	require.NoError(t, err)

	assert.True(t, sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key }))

	snap, err := kv.Decode(entries)
	require.NoError(t, err)

	assert.Equal(t, *cs.Metadata, snap.Metadata)
	assert.Equal(t, owner, snap.Owner)
	assert.Equal(t, uint64(100), snap.Rate)
	assert.Equal(t, treasury, snap.Treasury)
	assert.Equal(t, cs.Balances, snap.Balances)
	assert.Equal(t, cs.Allowances, snap.Allowances)
	assert.Equal(t, cs.Exempt, snap.Exempt)
	assert.Equal(t, uint64(1), snap.Sequence)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := kv.Decode(nil)
	require.ErrorIs(t, err, store.ErrNotInitialized)

	_, err = kv.Decode([]kv.Entry{{Key: kv.BalanceKey(owner), Value: "1"}})
	require.ErrorIs(t, err, store.ErrNotInitialized)
}

func TestDecodeRejectsCorruptEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry kv.Entry
	}{
		{"bad balance", kv.Entry{Key: kv.BalanceKey(owner), Value: "-3"}},
		{"bad address", kv.Entry{Key: "bal/0x12", Value: "3"}},
		{"bad rate", kv.Entry{Key: kv.KeyRate, Value: "x"}},
		{"bad decimals", kv.Entry{Key: kv.KeyDecimals, Value: "300"}},
		{"bad allowance key", kv.Entry{Key: "alw/" + address.Key(owner), Value: "1"}},
		{"unknown", kv.Entry{Key: "zzz", Value: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kv.Decode([]kv.Entry{{Key: kv.KeyName, Value: "GameToken"}, tt.entry})
			require.Error(t, err)
		})
	}
}

func TestExemptionFalseIsWritten(t *testing.T) {
	entries, err := kv.Encode(&store.Changeset{Exempt: map[address.Address]bool{spender: false}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kv.ExemptKey(spender), entries[0].Key)
	assert.Equal(t, "0", entries[0].Value)
}

func TestEventKeys(t *testing.T) {
	assert.Equal(t, "evt/00000000000000000042", kv.EventKey(42))
	assert.Less(t, kv.EventKey(9), kv.EventKey(10))
	assert.Less(t, kv.EventKey(^uint64(0)), kv.EventKeyUpper)
	assert.True(t, kv.IsEventKey(kv.EventKey(1)))
	assert.False(t, kv.IsEventKey(kv.KeySequence))

	from, to := kv.EventRange(3)
	assert.Equal(t, kv.EventKey(4), from)
	assert.Equal(t, kv.EventKeyUpper, to)
}

func TestEventsRoundTrip(t *testing.T) {
	cs := genesis()
	entries, err := kv.Encode(cs)
	require.NoError(t, err)

	var evtEntries []kv.Entry
	for _, e := range entries {
		if kv.IsEventKey(e.Key) {
			evtEntries = append(evtEntries, e)
		}
	}
	evts, err := kv.DecodeEvents(evtEntries)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, cs.Events[0].ID.String(), evts[0].ID.String())
	assert.Equal(t, cs.Events[0].Amount, evts[0].Amount)
	assert.Equal(t, treasury, evts[0].To)
}
