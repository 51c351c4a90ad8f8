package extension

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/types"
)

// Token variants selectable from configuration.
const (
	VariantGame   = "game"
	VariantCredit = "credit"
	VariantCustom = "custom"
)

// ErrUnknownVariant is returned for a variant other than game, credit or custom.
var ErrUnknownVariant = errors.New("gametoken: unknown token variant")

// Config holds the GameToken extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.gametoken" or "gametoken" keys).
type Config struct {
	// Variant selects the deployment preset: game, credit or custom
	// (default: game). Presets ignore Name, Symbol, Decimals, TotalSupply
	// and Holder.
	Variant string `json:"variant" mapstructure:"variant" yaml:"variant"`

	Name     string `json:"name" mapstructure:"name" yaml:"name"`
	Symbol   string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// TotalSupply is expressed in whole tokens, e.g. "16000000" or "0.5".
	TotalSupply string `json:"total_supply" mapstructure:"total_supply" yaml:"total_supply"`

	// Owner, Holder and Treasury are hex addresses. Holder defaults to Owner.
	Owner    string `json:"owner" mapstructure:"owner" yaml:"owner"`
	Holder   string `json:"holder" mapstructure:"holder" yaml:"holder"`
	Treasury string `json:"treasury" mapstructure:"treasury" yaml:"treasury"`

	// TransferFeeRate is the fee numerator over 10000. Nil means the
	// default rate of 100.
	TransferFeeRate *uint64 `json:"transfer_fee_rate" mapstructure:"transfer_fee_rate" yaml:"transfer_fee_rate"`

	// PluginTimeout bounds each plugin callback (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Variant:       VariantGame,
		Decimals:      gametoken.DefaultDecimals,
		PluginTimeout: 5 * time.Second,
	}
}

// Params resolves the configuration into token parameters. The result is
// not validated; gametoken.New does that.
func (c Config) Params() (gametoken.Params, error) {
	owner, err := parseAddress("owner", c.Owner)
	if err != nil {
		return gametoken.Params{}, err
	}
	treasury, err := parseAddress("treasury", c.Treasury)
	if err != nil {
		return gametoken.Params{}, err
	}

	rate := gametoken.DefaultFeeRate
	if c.TransferFeeRate != nil {
		rate = *c.TransferFeeRate
	}

	switch strings.ToLower(c.Variant) {
	case "", VariantGame:
		return gametoken.GameToken(owner, treasury, rate), nil
	case VariantCredit:
		return gametoken.CreditToken(owner, treasury, rate), nil
	case VariantCustom:
	default:
		return gametoken.Params{}, fmt.Errorf("%w: %q", ErrUnknownVariant, c.Variant)
	}

	holder := owner
	if c.Holder != "" {
		if holder, err = parseAddress("holder", c.Holder); err != nil {
			return gametoken.Params{}, err
		}
	}

	decimals := c.Decimals
	if decimals == 0 {
		decimals = gametoken.DefaultDecimals
	}

	supply, err := types.ParseUnits(c.TotalSupply, decimals)
	if err != nil {
		return gametoken.Params{}, fmt.Errorf("gametoken: total_supply: %w", err)
	}

	return gametoken.Params{
		Name:            c.Name,
		Symbol:          c.Symbol,
		Decimals:        decimals,
		TotalSupply:     supply,
		Owner:           owner,
		Holder:          holder,
		Treasury:        treasury,
		TransferFeeRate: rate,
	}, nil
}

func parseAddress(field, s string) (address.Address, error) {
	if s == "" {
		return address.Zero, nil
	}
	a, err := address.Parse(s)
	if err != nil {
		return address.Zero, fmt.Errorf("gametoken: %s: %w", field, err)
	}
	return a, nil
}
