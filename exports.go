package gametoken

import (
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/fee"
	"github.com/Gametoken-tech/gametoken/types"
)

// Re-export common types for convenience so users don't have to import the
// leaf packages.

// Address is re-exported from the address package.
type Address = address.Address

// Amount is re-exported from the types package.
type Amount = types.Amount

// Event is re-exported from the event package.
type Event = event.Event

// ZeroAddress is the null account.
var ZeroAddress = address.Zero

// Re-export constructors
var (
	ParseAddress     = address.Parse
	MustParseAddress = address.MustParse
	NewAmount        = types.NewAmount
	ParseAmount      = types.ParseAmount
	ParseUnits       = types.ParseUnits
	Units            = types.Units
	MustUnits        = types.MustUnits
)

// Fee constants
const (
	FeeDenominator = fee.Denominator
	DefaultFeeRate = fee.DefaultRate
)
