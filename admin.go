package gametoken

import (
	"context"

	"github.com/Gametoken-tech/gametoken/access"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/fee"
	"github.com/Gametoken-tech/gametoken/store"
)

// Administrative operations check the caller before validating arguments.

// SetTransferFeeRate replaces the fee numerator.
func (t *Token) SetTransferFeeRate(ctx context.Context, caller address.Address, rate uint64) error {
	return t.execute(ctx, OpSetTransferFeeRate, func(*book.Tx) (*store.Changeset, func(), error) {
		if err := t.acl.Authorize(caller); err != nil {
			return nil, nil, err
		}
		if err := fee.ValidateRate(rate); err != nil {
			return nil, nil, err
		}
		cs := &store.Changeset{
			Rate:   &rate,
			Events: []*event.Event{event.TransferFeeRateUpdated(rate)},
		}
		return cs, func() { t.policy.SetRate(rate) }, nil
	})
}

// SetTreasury replaces the fee recipient.
func (t *Token) SetTreasury(ctx context.Context, caller, treasury address.Address) error {
	return t.execute(ctx, OpSetTreasury, func(*book.Tx) (*store.Changeset, func(), error) {
		if err := t.acl.Authorize(caller); err != nil {
			return nil, nil, err
		}
		if err := fee.ValidateTreasury(treasury); err != nil {
			return nil, nil, err
		}
		cs := &store.Changeset{
			Treasury: &treasury,
			Events:   []*event.Event{event.TreasuryUpdated(treasury)},
		}
		return cs, func() { t.policy.SetTreasury(treasury) }, nil
	})
}

// ExcludeFromFee exempts account from fees on both sending and receiving.
func (t *Token) ExcludeFromFee(ctx context.Context, caller, account address.Address) error {
	return t.execute(ctx, OpExcludeFromFee, func(*book.Tx) (*store.Changeset, func(), error) {
		if err := t.acl.Authorize(caller); err != nil {
			return nil, nil, err
		}
		if err := t.policy.CheckExclude(account); err != nil {
			return nil, nil, err
		}
		cs := &store.Changeset{
			Exempt: map[address.Address]bool{account: true},
			Events: []*event.Event{event.ExcludedFromFee(account)},
		}
		return cs, func() { t.policy.SetExcluded(account, true) }, nil
	})
}

// IncludeForFee removes account's exemption.
func (t *Token) IncludeForFee(ctx context.Context, caller, account address.Address) error {
	return t.execute(ctx, OpIncludeForFee, func(*book.Tx) (*store.Changeset, func(), error) {
		if err := t.acl.Authorize(caller); err != nil {
			return nil, nil, err
		}
		if err := t.policy.CheckInclude(account); err != nil {
			return nil, nil, err
		}
		cs := &store.Changeset{
			Exempt: map[address.Address]bool{account: false},
			Events: []*event.Event{event.IncludedForFee(account)},
		}
		return cs, func() { t.policy.SetExcluded(account, false) }, nil
	})
}

// TransferOwnership hands administration to next in a single step.
func (t *Token) TransferOwnership(ctx context.Context, caller, next address.Address) error {
	return t.execute(ctx, OpTransferOwnership, func(*book.Tx) (*store.Changeset, func(), error) {
		if err := t.acl.Authorize(caller); err != nil {
			return nil, nil, err
		}
		if err := access.ValidateOwner(next); err != nil {
			return nil, nil, err
		}
		previous := t.acl.Owner()
		cs := &store.Changeset{
			Owner:  &next,
			Events: []*event.Event{event.OwnershipTransferred(previous, next)},
		}
		return cs, func() { t.acl.SetOwner(next) }, nil
	})
}
