package gametoken

import (
	"github.com/Gametoken-tech/gametoken/access"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/fee"
	"github.com/Gametoken-tech/gametoken/types"
)

// DefaultDecimals is the display precision of both presets.
const DefaultDecimals uint8 = 18

// Preset supplies.
var (
	// GameTokenSupply is 16,000,000 whole tokens.
	GameTokenSupply = types.MustUnits(16_000_000, DefaultDecimals)

	// CreditTokenSupply is 10^18 whole tokens.
	CreditTokenSupply = types.MustUnits(1_000_000_000_000_000_000, DefaultDecimals)
)

// Params fixes the identity and initial distribution of a token.
type Params struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply types.Amount

	// Owner is the administrator allowed to change the fee policy.
	Owner address.Address

	// Holder receives the whole supply at genesis.
	Holder address.Address

	Treasury        address.Address
	TransferFeeRate uint64
}

// GameToken returns the parameters of the game token: the whole supply is
// minted to the treasury.
func GameToken(owner, treasury address.Address, rate uint64) Params {
	return Params{
		Name:            "GameToken",
		Symbol:          "GAME",
		Decimals:        DefaultDecimals,
		TotalSupply:     GameTokenSupply,
		Owner:           owner,
		Holder:          treasury,
		Treasury:        treasury,
		TransferFeeRate: rate,
	}
}

// CreditToken returns the parameters of the credit token: the whole supply
// is minted to the owner.
func CreditToken(owner, treasury address.Address, rate uint64) Params {
	return Params{
		Name:            "CreditToken",
		Symbol:          "CREDIT",
		Decimals:        DefaultDecimals,
		TotalSupply:     CreditTokenSupply,
		Owner:           owner,
		Holder:          owner,
		Treasury:        treasury,
		TransferFeeRate: rate,
	}
}

// Validate checks the parameters in construction order.
func (p Params) Validate() error {
	if err := fee.ValidateTreasury(p.Treasury); err != nil {
		return err
	}
	if err := fee.ValidateRate(p.TransferFeeRate); err != nil {
		return err
	}
	if address.IsZero(p.Holder) {
		return ErrInvalidHolder
	}
	return access.ValidateOwner(p.Owner)
}
