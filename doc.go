// Package gametoken provides a fungible token engine with an owner-governed
// transfer fee.
//
// Gametoken is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - ERC20-style balances, allowances, and delegated transfers
//   - A basis-point transfer fee diverted to a treasury account
//   - A fee exemption list and a single administrator
//   - Atomic writes persisted through a pluggable store
//   - Ordered event notifications through plugins
//
// # Quick Start
//
// Create a token with your preferred store:
//
//	import (
//	    "github.com/Gametoken-tech/gametoken"
//	    "github.com/Gametoken-tech/gametoken/store/memory"
//	)
//
//	params := gametoken.GameToken(owner, treasury, gametoken.DefaultFeeRate)
//	t, err := gametoken.New(memory.New(), params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start persists the genesis distribution or restores saved state.
//	if err := t.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop()
//
// # Fees
//
// A transfer of amount from sender to recipient charges
// floor(amount * rate / 10000) unless either party is excluded. The fee leg
// (sender to treasury) is applied and notified before the net leg:
//
//	// rate 100: treasury receives 100, alice receives 9900
//	err := t.Transfer(ctx, treasury, alice, gametoken.NewAmount(10000))
//
// TransferFrom decrements the spender's allowance by the gross amount.
//
// # Administration
//
// SetTransferFeeRate, SetTreasury, ExcludeFromFee, IncludeForFee and
// TransferOwnership are reserved for the owner and fail with ErrUnauthorized
// for anyone else.
//
// # Storage
//
// Stores live under store/: memory, bolt, redis, postgres, sqlite and mongo.
// Every write commits one changeset atomically; a failed commit leaves the
// token unchanged and returns an error wrapping ErrCommitFailed.
//
// # Plugins
//
// Plugins implement any subset of the hooks in the plugin package. Events
// are delivered in commit order after the state they describe is visible:
//
//	t, err := gametoken.New(s, params,
//	    gametoken.WithPlugin(audithook.New(recorder)),
//	    gametoken.WithPlugin(observability.NewMetricsExtension(observability.NewOTelFactory(meter))),
//	    gametoken.WithPlugin(kafka.NewPublisher(brokers, "gametoken.events")),
//	)
package gametoken
