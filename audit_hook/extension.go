// Package audithook bridges committed token events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnTransfer               = (*Extension)(nil)
	_ plugin.OnApproval               = (*Extension)(nil)
	_ plugin.OnExcludedFromFee        = (*Extension)(nil)
	_ plugin.OnIncludedForFee         = (*Extension)(nil)
	_ plugin.OnTransferFeeRateUpdated = (*Extension)(nil)
	_ plugin.OnTreasuryUpdated        = (*Extension)(nil)
	_ plugin.OnOwnershipTransferred   = (*Extension)(nil)
	_ plugin.OnOperationRejected      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges token events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Balance and allowance hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer. Fee legs are recorded under
// their own action.
func (e *Extension) OnTransfer(ctx context.Context, evt *event.Event) error {
	action := ActionTokenTransferred
	if evt.Fee {
		action = ActionFeeCharged
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceAccount, address.Key(evt.From), CategoryTransfer, nil,
		"event_id", evt.ID.String(),
		"operation_id", evt.OperationID.String(),
		"sequence", evt.Sequence,
		"from", evt.From.Hex(),
		"to", evt.To.Hex(),
		"amount", evt.Amount.String(),
	)
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionAllowanceApproved, SeverityInfo, OutcomeSuccess,
		ResourceAllowance, address.Key(evt.Owner()), CategoryAllowance, nil,
		"event_id", evt.ID.String(),
		"sequence", evt.Sequence,
		"owner", evt.Owner().Hex(),
		"spender", evt.Spender().Hex(),
		"amount", evt.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Fee policy hooks
// ──────────────────────────────────────────────────

// OnExcludedFromFee implements plugin.OnExcludedFromFee.
func (e *Extension) OnExcludedFromFee(ctx context.Context, account address.Address) error {
	return e.record(ctx, ActionFeeExcluded, SeverityInfo, OutcomeSuccess,
		ResourceFeePolicy, address.Key(account), CategoryFee, nil,
		"account", account.Hex(),
	)
}

// OnIncludedForFee implements plugin.OnIncludedForFee.
func (e *Extension) OnIncludedForFee(ctx context.Context, account address.Address) error {
	return e.record(ctx, ActionFeeIncluded, SeverityInfo, OutcomeSuccess,
		ResourceFeePolicy, address.Key(account), CategoryFee, nil,
		"account", account.Hex(),
	)
}

// OnTransferFeeRateUpdated implements plugin.OnTransferFeeRateUpdated.
func (e *Extension) OnTransferFeeRateUpdated(ctx context.Context, rate uint64) error {
	return e.record(ctx, ActionFeeRateUpdated, SeverityWarning, OutcomeSuccess,
		ResourceFeePolicy, "", CategoryFee, nil,
		"rate", rate,
		"denominator", gametoken.FeeDenominator,
	)
}

// OnTreasuryUpdated implements plugin.OnTreasuryUpdated.
func (e *Extension) OnTreasuryUpdated(ctx context.Context, treasury address.Address) error {
	return e.record(ctx, ActionFeeTreasuryUpdated, SeverityWarning, OutcomeSuccess,
		ResourceFeePolicy, address.Key(treasury), CategoryFee, nil,
		"treasury", treasury.Hex(),
	)
}

// ──────────────────────────────────────────────────
// Access hooks
// ──────────────────────────────────────────────────

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (e *Extension) OnOwnershipTransferred(ctx context.Context, previous, next address.Address) error {
	return e.record(ctx, ActionOwnershipTransferred, SeverityCritical, OutcomeSuccess,
		ResourceOwnership, address.Key(next), CategoryAccess, nil,
		"previous_owner", previous.Hex(),
		"new_owner", next.Hex(),
	)
}

// OnOperationRejected implements plugin.OnOperationRejected. Unauthorized
// attempts and persistence failures are raised above plain validation
// rejections.
func (e *Extension) OnOperationRejected(ctx context.Context, op string, err error) error {
	severity := SeverityInfo
	category := CategoryTransfer
	switch {
	case gametoken.IsRetryable(err):
		severity = SeverityError
	case isUnauthorized(err):
		severity = SeverityWarning
		category = CategoryAccess
	}
	return e.record(ctx, ActionOperationRejected, severity, OutcomeFailure,
		ResourceOperation, op, category, err,
		"operation", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, gametoken.ErrUnauthorized)
}
