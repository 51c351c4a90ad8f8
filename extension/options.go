package extension

import (
	"time"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/plugin"
	"github.com/Gametoken-tech/gametoken/store"
)

// Option configures the GameToken Forge extension.
type Option func(*Extension)

// WithStore sets the store for the token engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithTokenOption passes a gametoken.Option through to the underlying engine.
func WithTokenOption(opt gametoken.Option) Option {
	return func(e *Extension) {
		e.tokenOpts = append(e.tokenOpts, opt)
	}
}

// WithPlugin registers a token plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.tokenOpts = append(e.tokenOpts, gametoken.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithParams bypasses configuration and deploys p as given.
func WithParams(p gametoken.Params) Option {
	return func(e *Extension) { e.params = &p }
}

// WithVariant selects the deployment preset.
func WithVariant(variant string) Option {
	return func(e *Extension) { e.config.Variant = variant }
}

// WithOwner sets the administrator address.
func WithOwner(hex string) Option {
	return func(e *Extension) { e.config.Owner = hex }
}

// WithTreasury sets the fee recipient address.
func WithTreasury(hex string) Option {
	return func(e *Extension) { e.config.Treasury = hex }
}

// WithTransferFeeRate sets the initial fee numerator.
func WithTransferFeeRate(rate uint64) Option {
	return func(e *Extension) { e.config.TransferFeeRate = &rate }
}

// WithPluginTimeout bounds each plugin callback.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
