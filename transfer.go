package gametoken

import (
	"context"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/types"
)

// Transfer moves amount from caller to recipient. When a fee applies the
// treasury receives it first and recipient receives amount minus the fee.
func (t *Token) Transfer(ctx context.Context, caller, recipient address.Address, amount types.Amount) error {
	return t.execute(ctx, OpTransfer, func(tx *book.Tx) (*store.Changeset, func(), error) {
		events, err := t.transfer(tx, caller, recipient, amount)
		if err != nil {
			return nil, nil, err
		}
		return &store.Changeset{Events: events}, nil, nil
	})
}

// TransferFrom moves amount from sender to recipient on behalf of caller.
// The allowance of caller over sender drops by the gross amount, fee included.
func (t *Token) TransferFrom(ctx context.Context, caller, sender, recipient address.Address, amount types.Amount) error {
	return t.execute(ctx, OpTransferFrom, func(tx *book.Tx) (*store.Changeset, func(), error) {
		if err := checkEndpoints(sender, recipient); err != nil {
			return nil, nil, err
		}
		if err := tx.SpendAllowance(sender, caller, amount); err != nil {
			return nil, nil, err
		}
		events, err := t.transfer(tx, sender, recipient, amount)
		if err != nil {
			return nil, nil, err
		}
		return &store.Changeset{Events: events}, nil, nil
	})
}

// transfer stages the fee leg and the net leg on tx.
func (t *Token) transfer(tx *book.Tx, sender, recipient address.Address, amount types.Amount) ([]*event.Event, error) {
	if err := checkEndpoints(sender, recipient); err != nil {
		return nil, err
	}
	if tx.BalanceOf(sender).Lt(amount) {
		return nil, ErrInsufficientBalance
	}

	feeAmount, err := t.policy.Compute(sender, recipient, amount)
	if err != nil {
		return nil, err
	}

	if feeAmount.IsZero() {
		if err := tx.Move(sender, recipient, amount); err != nil {
			return nil, err
		}
		return []*event.Event{event.Transfer(sender, recipient, amount, false)}, nil
	}

	net, err := amount.Sub(feeAmount)
	if err != nil {
		return nil, err
	}
	treasury := t.policy.Treasury()
	if err := tx.Move(sender, treasury, feeAmount); err != nil {
		return nil, err
	}
	if err := tx.Move(sender, recipient, net); err != nil {
		return nil, err
	}
	return []*event.Event{
		event.Transfer(sender, treasury, feeAmount, true),
		event.Transfer(sender, recipient, net, false),
	}, nil
}

func checkEndpoints(sender, recipient address.Address) error {
	if address.IsZero(recipient) {
		return ErrZeroAddressRecipient
	}
	if address.IsZero(sender) {
		return ErrZeroAddressSender
	}
	return nil
}

// ──────────────────────────────────────────────────
// Allowances
// ──────────────────────────────────────────────────

// Approve sets the allowance of spender over caller's balance to amount.
func (t *Token) Approve(ctx context.Context, caller, spender address.Address, amount types.Amount) error {
	return t.execute(ctx, OpApprove, func(tx *book.Tx) (*store.Changeset, func(), error) {
		if err := checkApproval(caller, spender); err != nil {
			return nil, nil, err
		}
		tx.SetAllowance(caller, spender, amount)
		return &store.Changeset{Events: []*event.Event{event.Approval(caller, spender, amount)}}, nil, nil
	})
}

// IncreaseAllowance raises the allowance of spender by added.
func (t *Token) IncreaseAllowance(ctx context.Context, caller, spender address.Address, added types.Amount) error {
	return t.execute(ctx, OpIncreaseAllowance, func(tx *book.Tx) (*store.Changeset, func(), error) {
		if err := checkApproval(caller, spender); err != nil {
			return nil, nil, err
		}
		next, err := tx.IncreaseAllowance(caller, spender, added)
		if err != nil {
			return nil, nil, err
		}
		return &store.Changeset{Events: []*event.Event{event.Approval(caller, spender, next)}}, nil, nil
	})
}

// DecreaseAllowance lowers the allowance of spender by subtracted.
func (t *Token) DecreaseAllowance(ctx context.Context, caller, spender address.Address, subtracted types.Amount) error {
	return t.execute(ctx, OpDecreaseAllowance, func(tx *book.Tx) (*store.Changeset, func(), error) {
		if err := checkApproval(caller, spender); err != nil {
			return nil, nil, err
		}
		next, err := tx.DecreaseAllowance(caller, spender, subtracted)
		if err != nil {
			return nil, nil, err
		}
		return &store.Changeset{Events: []*event.Event{event.Approval(caller, spender, next)}}, nil, nil
	})
}

func checkApproval(owner, spender address.Address) error {
	if address.IsZero(owner) {
		return ErrZeroAddressSender
	}
	if address.IsZero(spender) {
		return ErrInvalidRecipient
	}
	return nil
}
