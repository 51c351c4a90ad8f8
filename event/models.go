// Package event defines the ordered notifications a token emits.
package event

import (
	"time"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/id"
	"github.com/Gametoken-tech/gametoken/types"
)

// Kind names an event type.
type Kind string

const (
	KindTransfer               Kind = "transfer"
	KindApproval               Kind = "approval"
	KindExcludedFromFee        Kind = "excluded_from_fee"
	KindIncludedForFee         Kind = "included_for_fee"
	KindTransferFeeRateUpdated Kind = "transfer_fee_rate_updated"
	KindTreasuryUpdated        Kind = "treasury_updated"
	KindOwnershipTransferred   Kind = "ownership_transferred"
)

// Event is one committed notification.
//
// Field use by kind:
//   - transfer: From, To, Amount, Fee (true on the fee leg)
//   - approval: From (owner), To (spender), Amount
//   - excluded_from_fee, included_for_fee, treasury_updated: Account
//   - transfer_fee_rate_updated: Rate
//   - ownership_transferred: From (previous), To (new)
type Event struct {
	ID          id.EventID      `json:"id"`
	OperationID id.OperationID  `json:"operation_id"`
	Sequence    uint64          `json:"sequence"`
	Kind        Kind            `json:"kind"`
	From        address.Address `json:"from,omitempty"`
	To          address.Address `json:"to,omitempty"`
	Account     address.Address `json:"account,omitempty"`
	Amount      types.Amount    `json:"amount"`
	Rate        uint64          `json:"rate,omitempty"`
	Fee         bool            `json:"fee,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Transfer builds a transfer event.
func Transfer(from, to address.Address, amount types.Amount, isFee bool) *Event {
	return &Event{Kind: KindTransfer, From: from, To: to, Amount: amount, Fee: isFee}
}

// Approval builds an approval event.
func Approval(owner, spender address.Address, amount types.Amount) *Event {
	return &Event{Kind: KindApproval, From: owner, To: spender, Amount: amount}
}

// ExcludedFromFee builds an exclusion event.
func ExcludedFromFee(account address.Address) *Event {
	return &Event{Kind: KindExcludedFromFee, Account: account}
}

// IncludedForFee builds an inclusion event.
func IncludedForFee(account address.Address) *Event {
	return &Event{Kind: KindIncludedForFee, Account: account}
}

// TransferFeeRateUpdated builds a rate change event.
func TransferFeeRateUpdated(rate uint64) *Event {
	return &Event{Kind: KindTransferFeeRateUpdated, Rate: rate}
}

// TreasuryUpdated builds a treasury change event.
func TreasuryUpdated(treasury address.Address) *Event {
	return &Event{Kind: KindTreasuryUpdated, Account: treasury}
}

// OwnershipTransferred builds an ownership change event.
func OwnershipTransferred(previous, next address.Address) *Event {
	return &Event{Kind: KindOwnershipTransferred, From: previous, To: next}
}

// Owner returns the owner of an approval event.
func (e *Event) Owner() address.Address { return e.From }

// Spender returns the spender of an approval event.
func (e *Event) Spender() address.Address { return e.To }
