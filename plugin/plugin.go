// Package plugin provides the listener system for token notifications.
// Plugins hook into lifecycle and committed-event callbacks; the engine
// invokes them synchronously, in commit order, after each write.
package plugin

import (
	"context"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called once the token has started. t is the *gametoken.Token.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, t interface{}) error
}

// OnShutdown is called when the token is stopping.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Event hooks
// ──────────────────────────────────────────────────

// OnEvent receives every committed event, in sequence order, before the
// typed hook for the same event.
type OnEvent interface {
	Plugin
	OnEvent(ctx context.Context, evt *event.Event) error
}

// OnTransfer is called for each balance movement. A fee-charging transfer
// produces two calls, fee leg first.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, evt *event.Event) error
}

// OnApproval is called when an allowance is set.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, evt *event.Event) error
}

// ──────────────────────────────────────────────────
// Policy hooks
// ──────────────────────────────────────────────────

// OnExcludedFromFee is called when an account becomes fee-exempt.
type OnExcludedFromFee interface {
	Plugin
	OnExcludedFromFee(ctx context.Context, account address.Address) error
}

// OnIncludedForFee is called when an account loses its exemption.
type OnIncludedForFee interface {
	Plugin
	OnIncludedForFee(ctx context.Context, account address.Address) error
}

// OnTransferFeeRateUpdated is called with the new rate in basis points.
type OnTransferFeeRateUpdated interface {
	Plugin
	OnTransferFeeRateUpdated(ctx context.Context, rate uint64) error
}

// OnTreasuryUpdated is called with the new treasury.
type OnTreasuryUpdated interface {
	Plugin
	OnTreasuryUpdated(ctx context.Context, treasury address.Address) error
}

// OnOwnershipTransferred is called when the administrator changes.
type OnOwnershipTransferred interface {
	Plugin
	OnOwnershipTransferred(ctx context.Context, previous, next address.Address) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationRejected is called when a write fails. No state changed.
type OnOperationRejected interface {
	Plugin
	OnOperationRejected(ctx context.Context, op string, err error) error
}
