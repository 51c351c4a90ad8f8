package gametoken

import (
	"errors"

	"github.com/Gametoken-tech/gametoken/access"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/fee"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/types"
)

// Sentinel errors for common failure scenarios.
var (
	// Fee policy errors
	ErrInvalidTreasury = fee.ErrInvalidTreasury
	ErrInvalidFeeRate  = fee.ErrInvalidFeeRate
	ErrAlreadyExcluded = fee.ErrAlreadyExcluded
	ErrNotExcluded     = fee.ErrNotExcluded

	// Access errors
	ErrUnauthorized = access.ErrUnauthorized
	ErrInvalidOwner = access.ErrInvalidOwner

	// Balance book errors
	ErrInsufficientBalance   = book.ErrInsufficientBalance
	ErrInsufficientAllowance = book.ErrInsufficientAllowance
	ErrAllowanceBelowZero    = book.ErrAllowanceBelowZero
	ErrOverflow              = types.ErrOverflow

	// Transfer errors
	ErrZeroAddressRecipient = errors.New("gametoken: transfer to the zero address")
	ErrZeroAddressSender    = errors.New("gametoken: transfer from the zero address")
	ErrInvalidRecipient     = errors.New("gametoken: approve to the zero address")

	// Construction errors
	ErrInvalidHolder = errors.New("gametoken: initial holder is the zero address")

	// Lifecycle and store errors
	ErrNotStarted     = errors.New("gametoken: token not started")
	ErrStateCorrupt   = errors.New("gametoken: persisted state violates the supply invariant")
	ErrCommitFailed   = errors.New("gametoken: commit failed")
	ErrStoreClosed    = store.ErrStoreClosed
	ErrNotInitialized = store.ErrNotInitialized
)

// IsValidationError returns true if the operation was rejected by a local
// check before anything was persisted.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTreasury) ||
		errors.Is(err, ErrInvalidFeeRate) ||
		errors.Is(err, ErrAlreadyExcluded) ||
		errors.Is(err, ErrNotExcluded) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidOwner) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrAllowanceBelowZero) ||
		errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrZeroAddressRecipient) ||
		errors.Is(err, ErrZeroAddressSender) ||
		errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrInvalidHolder)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommitFailed) ||
		errors.Is(err, ErrNotStarted)
}
