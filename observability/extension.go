// Package observability provides a metrics extension for gametoken that
// records committed event counts and volumes through a MetricFactory.
package observability

import (
	"context"
	"errors"

	"github.com/Gametoken-tech/gametoken"
	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnTransfer               = (*MetricsExtension)(nil)
	_ plugin.OnApproval               = (*MetricsExtension)(nil)
	_ plugin.OnExcludedFromFee        = (*MetricsExtension)(nil)
	_ plugin.OnIncludedForFee         = (*MetricsExtension)(nil)
	_ plugin.OnTransferFeeRateUpdated = (*MetricsExtension)(nil)
	_ plugin.OnTreasuryUpdated        = (*MetricsExtension)(nil)
	_ plugin.OnOwnershipTransferred   = (*MetricsExtension)(nil)
	_ plugin.OnOperationRejected      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records token-wide metrics.
// Register it as a token plugin to track transfers and fee policy changes.
type MetricsExtension struct {
	factory MetricFactory

	// Transfer metrics
	Transfers      Counter
	TransferAmount Histogram
	FeesCharged    Counter
	FeeVolume      Counter

	// Allowance metrics
	Approvals Counter

	// Fee policy metrics
	FeeExclusions   Counter
	FeeInclusions   Counter
	FeeRateUpdates  Counter
	FeeRate         Histogram
	TreasuryUpdates Counter

	// Access metrics
	OwnershipTransfers Counter

	// Error metrics
	OperationsRejected Counter
	StoreErrors        Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use NewOTelFactory to export through OpenTelemetry.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Transfer metrics
		Transfers:      factory.Counter("gametoken.transfer.count"),
		TransferAmount: factory.Histogram("gametoken.transfer.amount"),
		FeesCharged:    factory.Counter("gametoken.fee.charged"),
		FeeVolume:      factory.Counter("gametoken.fee.volume"),

		// Allowance metrics
		Approvals: factory.Counter("gametoken.allowance.approved"),

		// Fee policy metrics
		FeeExclusions:   factory.Counter("gametoken.fee.excluded"),
		FeeInclusions:   factory.Counter("gametoken.fee.included"),
		FeeRateUpdates:  factory.Counter("gametoken.fee.rate.updated"),
		FeeRate:         factory.Histogram("gametoken.fee.rate"),
		TreasuryUpdates: factory.Counter("gametoken.fee.treasury.updated"),

		// Access metrics
		OwnershipTransfers: factory.Counter("gametoken.ownership.transferred"),

		// Error metrics
		OperationsRejected: factory.Counter("gametoken.operation.rejected"),
		StoreErrors:        factory.Counter("gametoken.store.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer. Fee legs count toward fee
// metrics only.
func (m *MetricsExtension) OnTransfer(_ context.Context, evt *event.Event) error {
	amount := evt.Amount.Float64()
	if evt.Fee {
		m.FeesCharged.Inc()
		m.FeeVolume.Add(amount)
		return nil
	}
	m.Transfers.Inc()
	m.TransferAmount.Observe(amount)
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _ *event.Event) error {
	m.Approvals.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Fee policy hooks
// ──────────────────────────────────────────────────

// OnExcludedFromFee implements plugin.OnExcludedFromFee.
func (m *MetricsExtension) OnExcludedFromFee(_ context.Context, _ address.Address) error {
	m.FeeExclusions.Inc()
	return nil
}

// OnIncludedForFee implements plugin.OnIncludedForFee.
func (m *MetricsExtension) OnIncludedForFee(_ context.Context, _ address.Address) error {
	m.FeeInclusions.Inc()
	return nil
}

// OnTransferFeeRateUpdated implements plugin.OnTransferFeeRateUpdated.
func (m *MetricsExtension) OnTransferFeeRateUpdated(_ context.Context, rate uint64) error {
	m.FeeRateUpdates.Inc()
	m.FeeRate.Observe(float64(rate))
	return nil
}

// OnTreasuryUpdated implements plugin.OnTreasuryUpdated.
func (m *MetricsExtension) OnTreasuryUpdated(_ context.Context, _ address.Address) error {
	m.TreasuryUpdates.Inc()
	return nil
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (m *MetricsExtension) OnOwnershipTransferred(_ context.Context, _, _ address.Address) error {
	m.OwnershipTransfers.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationRejected implements plugin.OnOperationRejected.
func (m *MetricsExtension) OnOperationRejected(_ context.Context, _ string, err error) error {
	m.OperationsRejected.Inc()
	if errors.Is(err, gametoken.ErrCommitFailed) {
		m.StoreErrors.Inc()
	}
	return nil
}
