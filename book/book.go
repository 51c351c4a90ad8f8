// Package book holds the balance and allowance tables of a token.
//
// A Book is never mutated directly by callers. Writes are staged on a Tx
// overlay, which reads through to the base tables, and folded in with
// Commit once the caller has durably persisted the staged values.
// Discarding a Tx leaves the Book exactly as it was.
//
// Book is not safe for concurrent use; the token engine serializes access.
package book

import (
	"errors"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/types"
)

// Sentinel errors.
var (
	ErrInsufficientBalance   = errors.New("book: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("book: transfer amount exceeds allowance")
	ErrAllowanceBelowZero    = errors.New("book: decreased allowance below zero")
)

// AllowanceKey identifies an allowance entry.
type AllowanceKey struct {
	Owner   address.Address
	Spender address.Address
}

// Book is the balance table plus the allowance table.
type Book struct {
	balances   map[address.Address]types.Amount
	allowances map[AllowanceKey]types.Amount
}

// New creates an empty Book.
func New() *Book {
	return &Book{
		balances:   make(map[address.Address]types.Amount),
		allowances: make(map[AllowanceKey]types.Amount),
	}
}

// BalanceOf returns the balance of account, zero if unknown.
func (b *Book) BalanceOf(account address.Address) types.Amount {
	return b.balances[account]
}

// Allowance returns how much spender may move out of owner's balance.
func (b *Book) Allowance(owner, spender address.Address) types.Amount {
	return b.allowances[AllowanceKey{Owner: owner, Spender: spender}]
}

// Sum returns the sum of all balances.
func (b *Book) Sum() (types.Amount, error) {
	total := types.Zero()
	for _, bal := range b.balances {
		next, err := total.Add(bal)
		if err != nil {
			return types.Amount{}, err
		}
		total = next
	}
	return total, nil
}

// Holders returns the number of accounts with a non-zero balance.
func (b *Book) Holders() int {
	n := 0
	for _, bal := range b.balances {
		if !bal.IsZero() {
			n++
		}
	}
	return n
}

// Restore replaces both tables. Used when loading persisted state.
func (b *Book) Restore(balances map[address.Address]types.Amount, allowances map[AllowanceKey]types.Amount) {
	b.balances = make(map[address.Address]types.Amount, len(balances))
	for k, v := range balances {
		b.balances[k] = v
	}
	b.allowances = make(map[AllowanceKey]types.Amount, len(allowances))
	for k, v := range allowances {
		b.allowances[k] = v
	}
}

// Begin starts a staged change set over the book.
func (b *Book) Begin() *Tx {
	return &Tx{
		base:       b,
		balances:   make(map[address.Address]types.Amount),
		allowances: make(map[AllowanceKey]types.Amount),
	}
}

// ──────────────────────────────────────────────────
// Staged transaction
// ──────────────────────────────────────────────────

// Tx stages balance and allowance writes without touching the base Book.
type Tx struct {
	base       *Book
	balances   map[address.Address]types.Amount
	allowances map[AllowanceKey]types.Amount
}

// BalanceOf returns the staged balance of account.
func (tx *Tx) BalanceOf(account address.Address) types.Amount {
	if v, ok := tx.balances[account]; ok {
		return v
	}
	return tx.base.BalanceOf(account)
}

// Allowance returns the staged allowance.
func (tx *Tx) Allowance(owner, spender address.Address) types.Amount {
	k := AllowanceKey{Owner: owner, Spender: spender}
	if v, ok := tx.allowances[k]; ok {
		return v
	}
	return tx.base.Allowance(owner, spender)
}

// Credit adds amount to account. Only genesis minting uses it directly.
func (tx *Tx) Credit(account address.Address, amount types.Amount) error {
	next, err := tx.BalanceOf(account).Add(amount)
	if err != nil {
		return err
	}
	tx.balances[account] = next
	return nil
}

// Move debits from and credits to. Either both apply or neither does.
// from == to is a valid no-op move that still requires sufficient balance.
func (tx *Tx) Move(from, to address.Address, amount types.Amount) error {
	fromBal := tx.BalanceOf(from)
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	debited, err := fromBal.Sub(amount)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	credited, err := tx.BalanceOf(to).Add(amount)
	if err != nil {
		return err
	}
	tx.balances[from] = debited
	tx.balances[to] = credited
	return nil
}

// SetAllowance sets the allowance to an absolute value.
func (tx *Tx) SetAllowance(owner, spender address.Address, amount types.Amount) {
	tx.allowances[AllowanceKey{Owner: owner, Spender: spender}] = amount
}

// SpendAllowance decrements the allowance by amount.
func (tx *Tx) SpendAllowance(owner, spender address.Address, amount types.Amount) error {
	current := tx.Allowance(owner, spender)
	if current.Lt(amount) {
		return ErrInsufficientAllowance
	}
	next, err := current.Sub(amount)
	if err != nil {
		return err
	}
	tx.SetAllowance(owner, spender, next)
	return nil
}

// IncreaseAllowance adds to the allowance with overflow checking.
func (tx *Tx) IncreaseAllowance(owner, spender address.Address, added types.Amount) (types.Amount, error) {
	next, err := tx.Allowance(owner, spender).Add(added)
	if err != nil {
		return types.Amount{}, err
	}
	tx.SetAllowance(owner, spender, next)
	return next, nil
}

// DecreaseAllowance subtracts from the allowance, failing below zero.
func (tx *Tx) DecreaseAllowance(owner, spender address.Address, subtracted types.Amount) (types.Amount, error) {
	next, err := tx.Allowance(owner, spender).Sub(subtracted)
	if err != nil {
		return types.Amount{}, ErrAllowanceBelowZero
	}
	tx.SetAllowance(owner, spender, next)
	return next, nil
}

// Balances returns the staged balances keyed by account.
func (tx *Tx) Balances() map[address.Address]types.Amount {
	out := make(map[address.Address]types.Amount, len(tx.balances))
	for k, v := range tx.balances {
		out[k] = v
	}
	return out
}

// Allowances returns the staged allowances.
func (tx *Tx) Allowances() map[AllowanceKey]types.Amount {
	out := make(map[AllowanceKey]types.Amount, len(tx.allowances))
	for k, v := range tx.allowances {
		out[k] = v
	}
	return out
}

// Commit folds the staged writes into the base book.
func (tx *Tx) Commit() {
	for k, v := range tx.balances {
		tx.base.balances[k] = v
	}
	for k, v := range tx.allowances {
		tx.base.allowances[k] = v
	}
}
