package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/Gametoken-tech/gametoken/event"
)

// DefaultTimeout bounds each plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so dispatch never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	slots   map[string]chan struct{} // one in-flight hook per plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onEvent                  []OnEvent
	onTransfer               []OnTransfer
	onApproval               []OnApproval
	onExcludedFromFee        []OnExcludedFromFee
	onIncludedForFee         []OnIncludedForFee
	onTransferFeeRateUpdated []OnTransferFeeRateUpdated
	onTreasuryUpdated        []OnTreasuryUpdated
	onOwnershipTransferred   []OnOwnershipTransferred
	onOperationRejected      []OnOperationRejected
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout.
//
// A hook that outlives the timeout keeps running in the background and keeps
// its plugin's slot, so the plugin's next hook waits for it within its own
// timeout and is skipped if the slot does not free up in time. A plugin
// therefore never runs two hooks at once and never sees events out of order,
// but a slow plugin misses events.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)
	if r.slots == nil {
		r.slots = make(map[string]chan struct{})
	}
	r.slots[p.Name()] = make(chan struct{}, 1)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnEvent); ok {
		r.onEvent = append(r.onEvent, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnExcludedFromFee); ok {
		r.onExcludedFromFee = append(r.onExcludedFromFee, v)
	}
	if v, ok := p.(OnIncludedForFee); ok {
		r.onIncludedForFee = append(r.onIncludedForFee, v)
	}
	if v, ok := p.(OnTransferFeeRateUpdated); ok {
		r.onTransferFeeRateUpdated = append(r.onTransferFeeRateUpdated, v)
	}
	if v, ok := p.(OnTreasuryUpdated); ok {
		r.onTreasuryUpdated = append(r.onTreasuryUpdated, v)
	}
	if v, ok := p.(OnOwnershipTransferred); ok {
		r.onOwnershipTransferred = append(r.onOwnershipTransferred, v)
	}
	if v, ok := p.(OnOperationRejected); ok {
		r.onOperationRejected = append(r.onOperationRejected, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnEvent)(nil)).Elem(), "OnEvent")
	checkInterface(reflect.TypeOf((*OnTransfer)(nil)).Elem(), "OnTransfer")
	checkInterface(reflect.TypeOf((*OnApproval)(nil)).Elem(), "OnApproval")
	checkInterface(reflect.TypeOf((*OnExcludedFromFee)(nil)).Elem(), "OnExcludedFromFee")
	checkInterface(reflect.TypeOf((*OnIncludedForFee)(nil)).Elem(), "OnIncludedForFee")
	checkInterface(reflect.TypeOf((*OnTransferFeeRateUpdated)(nil)).Elem(), "OnTransferFeeRateUpdated")
	checkInterface(reflect.TypeOf((*OnTreasuryUpdated)(nil)).Elem(), "OnTreasuryUpdated")
	checkInterface(reflect.TypeOf((*OnOwnershipTransferred)(nil)).Elem(), "OnOwnershipTransferred")
	checkInterface(reflect.TypeOf((*OnOperationRejected)(nil)).Elem(), "OnOperationRejected")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// ──────────────────────────────────────────────────
// Lifecycle dispatch
// ──────────────────────────────────────────────────

// EmitInit notifies all OnInit plugins.
func (r *Registry) EmitInit(ctx context.Context, t interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, t)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown notifies all OnShutdown plugins.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOperationRejected notifies all OnOperationRejected plugins.
func (r *Registry) EmitOperationRejected(ctx context.Context, op string, cause error) {
	r.mu.RLock()
	plugins := r.onOperationRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOperationRejected(ctx, op, cause)
		}); err != nil {
			r.logger.Warn("plugin OnOperationRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// ──────────────────────────────────────────────────
// Event dispatch
// ──────────────────────────────────────────────────

// Dispatch delivers committed events in order. For each event every OnEvent
// plugin runs first, then the typed hook for the event's kind.
func (r *Registry) Dispatch(ctx context.Context, events []*event.Event) {
	for _, evt := range events {
		r.emitEvent(ctx, evt)
		r.emitTyped(ctx, evt)
	}
}

func (r *Registry) emitEvent(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	plugins := r.onEvent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEvent(ctx, evt)
		}); err != nil {
			r.logger.Warn("plugin OnEvent failed",
				"plugin", p.Name(),
				"sequence", evt.Sequence,
				"error", err,
			)
		}
	}
}

func (r *Registry) emitTyped(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch evt.Kind {
	case event.KindTransfer:
		for _, p := range r.onTransfer {
			r.call(ctx, p.Name(), "OnTransfer", func() error { return p.OnTransfer(ctx, evt) })
		}
	case event.KindApproval:
		for _, p := range r.onApproval {
			r.call(ctx, p.Name(), "OnApproval", func() error { return p.OnApproval(ctx, evt) })
		}
	case event.KindExcludedFromFee:
		for _, p := range r.onExcludedFromFee {
			r.call(ctx, p.Name(), "OnExcludedFromFee", func() error { return p.OnExcludedFromFee(ctx, evt.Account) })
		}
	case event.KindIncludedForFee:
		for _, p := range r.onIncludedForFee {
			r.call(ctx, p.Name(), "OnIncludedForFee", func() error { return p.OnIncludedForFee(ctx, evt.Account) })
		}
	case event.KindTransferFeeRateUpdated:
		for _, p := range r.onTransferFeeRateUpdated {
			r.call(ctx, p.Name(), "OnTransferFeeRateUpdated", func() error { return p.OnTransferFeeRateUpdated(ctx, evt.Rate) })
		}
	case event.KindTreasuryUpdated:
		for _, p := range r.onTreasuryUpdated {
			r.call(ctx, p.Name(), "OnTreasuryUpdated", func() error { return p.OnTreasuryUpdated(ctx, evt.Account) })
		}
	case event.KindOwnershipTransferred:
		for _, p := range r.onOwnershipTransferred {
			r.call(ctx, p.Name(), "OnOwnershipTransferred", func() error { return p.OnOwnershipTransferred(ctx, evt.From, evt.To) })
		}
	}
}

// call runs one hook and logs its failure.
func (r *Registry) call(ctx context.Context, pluginName, hook string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the write path. The timeout covers both waiting
// for the plugin's previous hook and running this one.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	r.mu.RLock()
	slot := r.slots[pluginName]
	r.mu.RUnlock()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	if slot != nil {
		select {
		case slot <- struct{}{}:
		case <-timer.C:
			return fmt.Errorf("plugin timeout: %s: previous call still running", pluginName)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	done := make(chan error, 1)

	go func() {
		if slot != nil {
			defer func() { <-slot }()
		}
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
