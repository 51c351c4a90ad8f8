package event_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/id"
	"github.com/Gametoken-tech/gametoken/types"
)

func TestListOptsFilter(t *testing.T) {
	a := address.MustParse("0x00000000000000000000000000000000000000a1")
	evts := []*event.Event{
		{Sequence: 1, Kind: event.KindTransfer},
		{Sequence: 2, Kind: event.KindApproval},
		{Sequence: 3, Kind: event.KindTransfer},
		{Sequence: 4, Kind: event.KindExcludedFromFee, Account: a},
		{Sequence: 5, Kind: event.KindTransfer},
	}

	tests := []struct {
		name string
		opts event.ListOpts
		want []uint64
	}{
		{"all", event.ListOpts{}, []uint64{1, 2, 3, 4, 5}},
		{"after", event.ListOpts{After: 3}, []uint64{4, 5}},
		{"kind", event.ListOpts{Kind: event.KindTransfer}, []uint64{1, 3, 5}},
		{"limit", event.ListOpts{Limit: 2}, []uint64{1, 2}},
		{"combined", event.ListOpts{After: 1, Kind: event.KindTransfer, Limit: 1}, []uint64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Filter(evts)
			seqs := make([]uint64, len(got))
			for i, e := range got {
				seqs[i] = e.Sequence
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestEventJSON(t *testing.T) {
	from := address.MustParse("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	to := address.MustParse("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")

	ev := event.Transfer(from, to, types.MustParseAmount("16000000000000000000000000"), true)
	ev.ID = id.NewEventID()
	ev.OperationID = id.NewOperationID()
	ev.Sequence = 9

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var back event.Event
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev.ID.String(), back.ID.String())
	assert.Equal(t, ev.OperationID.String(), back.OperationID.String())
	assert.Equal(t, event.KindTransfer, back.Kind)
	assert.Equal(t, from, back.From)
	assert.Equal(t, to, back.To)
	assert.True(t, back.Fee)
	assert.Equal(t, "16000000000000000000000000", back.Amount.String())
}

func TestApprovalAccessors(t *testing.T) {
	owner := address.MustParse("0x00000000000000000000000000000000000000a1")
	spender := address.MustParse("0x00000000000000000000000000000000000000b0")
	ev := event.Approval(owner, spender, types.NewAmount(5))
	assert.Equal(t, owner, ev.Owner())
	assert.Equal(t, spender, ev.Spender())
}
