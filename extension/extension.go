// Package extension provides the Forge extension adapter for GameToken.
//
// It implements the forge.Extension interface to integrate a token engine
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.gametoken" or
// "gametoken" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "gametoken"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Fungible token ledger with transfer fees"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts a GameToken engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	params    *gametoken.Params
	token     *gametoken.Token
	store     store.Store
	tokenOpts []gametoken.Option
}

// New creates a new GameToken Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Token returns the underlying token engine.
// This is nil until Register is called.
func (e *Extension) Token() *gametoken.Token { return e.token }

// Register implements [forge.Extension]. It loads configuration,
// constructs the token engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	params, err := e.resolveParams()
	if err != nil {
		return err
	}

	tok, err := gametoken.New(e.store, params, e.buildTokenOpts()...)
	if err != nil {
		return err
	}
	e.token = tok

	return vessel.Provide(fapp.Container(), func() (*gametoken.Token, error) {
		return e.token, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.token == nil {
		return errors.New("gametoken: extension not initialized")
	}
	if err := e.token.Start(ctx); err != nil {
		return err
	}
	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.token != nil {
		if err := e.token.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("gametoken: store not initialized")
	}
	return e.store.Ping(ctx)
}

func (e *Extension) resolveParams() (gametoken.Params, error) {
	if e.params != nil {
		return *e.params, nil
	}
	return e.config.Params()
}

// buildTokenOpts constructs gametoken.Option values from the resolved config.
func (e *Extension) buildTokenOpts() []gametoken.Option {
	opts := make([]gametoken.Option, 0, len(e.tokenOpts)+2)

	if e.config.PluginTimeout > 0 {
		opts = append(opts, gametoken.WithPluginTimeout(e.config.PluginTimeout))
	}
	if e.config.DisableMigrate {
		opts = append(opts, gametoken.WithoutMigrate())
	}

	// Pass-through options last so they win.
	opts = append(opts, e.tokenOpts...)

	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("gametoken: configuration is required but not found in config files; " +
				"ensure 'extensions.gametoken' or 'gametoken' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("gametoken: configuration loaded",
		forge.F("variant", e.config.Variant),
		forge.F("owner", e.config.Owner),
		forge.F("treasury", e.config.Treasury),
		forge.F("plugin_timeout", e.config.PluginTimeout),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.gametoken", "gametoken"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("gametoken: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("gametoken: loaded config from file", forge.F("key", key))
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Variant == "" {
		cfg.Variant = defaults.Variant
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = defaults.Decimals
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&yamlConfig.Variant, programmaticConfig.Variant)
	fill(&yamlConfig.Name, programmaticConfig.Name)
	fill(&yamlConfig.Symbol, programmaticConfig.Symbol)
	fill(&yamlConfig.TotalSupply, programmaticConfig.TotalSupply)
	fill(&yamlConfig.Owner, programmaticConfig.Owner)
	fill(&yamlConfig.Holder, programmaticConfig.Holder)
	fill(&yamlConfig.Treasury, programmaticConfig.Treasury)

	if yamlConfig.Decimals == 0 {
		yamlConfig.Decimals = programmaticConfig.Decimals
	}
	if yamlConfig.TransferFeeRate == nil {
		yamlConfig.TransferFeeRate = programmaticConfig.TransferFeeRate
	}
	if yamlConfig.PluginTimeout == 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	return mergeWithDefaults(yamlConfig)
}
