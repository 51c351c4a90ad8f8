// Package fee implements the transfer fee policy: a basis-point rate, the
// treasury that receives fee proceeds, and the set of fee-exempt accounts.
//
// Validation and mutation are separate so the engine can validate a change,
// persist it, and only then apply it.
package fee

import (
	"errors"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/types"
)

// Denominator is the fixed rate denominator. A rate of 1 is 0.01%.
const Denominator uint64 = 10000

// DefaultRate is 1%.
const DefaultRate uint64 = 100

// Sentinel errors.
var (
	ErrInvalidTreasury = errors.New("fee: treasury cannot be zero")
	ErrInvalidFeeRate  = errors.New("fee: transfer fee rate can not be greater than 100%")
	ErrAlreadyExcluded = errors.New("fee: already excluded")
	ErrNotExcluded     = errors.New("fee: not excluded")
)

// Policy holds the fee configuration.
type Policy struct {
	rate     uint64
	treasury address.Address
	exempt   map[address.Address]struct{}
}

// NewPolicy validates the treasury and rate and returns a Policy with an
// empty exemption set.
func NewPolicy(treasury address.Address, rate uint64) (*Policy, error) {
	if err := ValidateTreasury(treasury); err != nil {
		return nil, err
	}
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	return &Policy{
		rate:     rate,
		treasury: treasury,
		exempt:   make(map[address.Address]struct{}),
	}, nil
}

// ValidateRate requires 0 <= rate <= Denominator.
func ValidateRate(rate uint64) error {
	if rate > Denominator {
		return ErrInvalidFeeRate
	}
	return nil
}

// ValidateTreasury rejects the null identifier.
func ValidateTreasury(treasury address.Address) error {
	if address.IsZero(treasury) {
		return ErrInvalidTreasury
	}
	return nil
}

// Rate returns the configured rate in basis points.
func (p *Policy) Rate() uint64 { return p.rate }

// Treasury returns the account receiving fee proceeds.
func (p *Policy) Treasury() address.Address { return p.treasury }

// IsExcluded reports whether account is fee-exempt.
func (p *Policy) IsExcluded(account address.Address) bool {
	_, ok := p.exempt[account]
	return ok
}

// Excluded returns the exemption set in byte order.
func (p *Policy) Excluded() []address.Address {
	out := make([]address.Address, 0, len(p.exempt))
	for a := range p.exempt {
		out = append(out, a)
	}
	address.Sort(out)
	return out
}

// Compute returns the fee owed on a transfer of amount from sender to
// recipient: zero when either side is exempt or the rate is zero,
// floor(amount * rate / Denominator) otherwise.
func (p *Policy) Compute(sender, recipient address.Address, amount types.Amount) (types.Amount, error) {
	if p.rate == 0 || p.IsExcluded(sender) || p.IsExcluded(recipient) {
		return types.Zero(), nil
	}
	return amount.MulDiv(p.rate, Denominator)
}

// CheckExclude fails if account is already exempt.
func (p *Policy) CheckExclude(account address.Address) error {
	if p.IsExcluded(account) {
		return ErrAlreadyExcluded
	}
	return nil
}

// CheckInclude fails if account is not exempt.
func (p *Policy) CheckInclude(account address.Address) error {
	if !p.IsExcluded(account) {
		return ErrNotExcluded
	}
	return nil
}

// SetRate replaces the rate. The caller has validated it.
func (p *Policy) SetRate(rate uint64) { p.rate = rate }

// SetTreasury replaces the treasury. The caller has validated it.
func (p *Policy) SetTreasury(treasury address.Address) { p.treasury = treasury }

// SetExcluded adds or removes account from the exemption set.
func (p *Policy) SetExcluded(account address.Address, excluded bool) {
	if excluded {
		p.exempt[account] = struct{}{}
		return
	}
	delete(p.exempt, account)
}

// Restore replaces the whole configuration. Used when loading persisted state.
func (p *Policy) Restore(rate uint64, treasury address.Address, exempt map[address.Address]bool) {
	p.rate = rate
	p.treasury = treasury
	p.exempt = make(map[address.Address]struct{}, len(exempt))
	for a, ok := range exempt {
		if ok {
			p.exempt[a] = struct{}{}
		}
	}
}
