package driver

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/errors"
	"github.com/wippyai/sharedmod/gateway"
	"github.com/wippyai/sharedmod/runtime"
)

// ValidateEntryPoint is the export a parachain validation guest must provide.
const ValidateEntryPoint = "validate_block"

// Driver routes parachain calls to registered shared module runtimes.
// Handles are assigned in registration order, starting at zero.
type Driver struct {
	runtimes []*runtime.SharedModule
	logger   *zap.Logger
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the driver's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New creates a driver with no registered runtimes
func New(opts ...Option) *Driver {
	d := &Driver{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a runtime and returns its handle
func (d *Driver) Register(m *runtime.SharedModule) uint32 {
	d.runtimes = append(d.runtimes, m)
	return uint32(len(d.runtimes) - 1)
}

// Len returns the number of registered runtimes
func (d *Driver) Len() int {
	return len(d.runtimes)
}

// Runtime returns the runtime registered under handle, or nil
func (d *Driver) Runtime(handle uint32) *runtime.SharedModule {
	if int(handle) >= len(d.runtimes) {
		return nil
	}
	return d.runtimes[handle]
}

// Dispatch forwards one time-sliced call to the runtime registered under
// handle. An unknown handle fails without touching any runtime state; the
// blob and time slice reach the target unchanged.
func (d *Driver) Dispatch(ctx context.Context, handle, timeSlice uint32, blob []byte) error {
	if int(handle) >= len(d.runtimes) {
		return errors.HandleNotFound(handle, len(d.runtimes))
	}
	return d.runtimes[handle].Invoke(ctx, timeSlice, blob)
}

// ValidateBlock instantiates a parachain guest against this driver's
// dispatch gateway and runs its validate_block export to completion. The
// guest instance lives for this one call.
func (d *Driver) ValidateBlock(ctx context.Context, para engine.Module) error {
	inst, err := para.Instantiate(ctx, gateway.Parachain(d))
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	d.logger.Debug("validate_block", zap.Int("runtimes", len(d.runtimes)))
	return inst.Invoke(ctx, ValidateEntryPoint)
}

// Relay drains every runtime's outbound message slots and delivers each
// blob into the addressed runtime's inbound slot, with the source handle as
// the sender. Blobs addressed to an unregistered handle are dropped. Relay
// returns the number of blobs delivered.
func (d *Driver) Relay() int {
	delivered := 0
	for sender, src := range d.runtimes {
		for recipient, blob := range src.TakeOutbound() {
			dst := d.Runtime(recipient)
			if dst == nil {
				d.logger.Warn("dropping blob for unregistered handle",
					zap.Uint32("recipient", recipient),
					zap.Int("sender", sender))
				continue
			}
			if dst.DeliverInbound(uint32(sender), blob) {
				d.logger.Debug("inbound slot overwritten",
					zap.Uint32("recipient", recipient),
					zap.Int("sender", sender))
			}
			delivered++
		}
	}
	return delivered
}

// Close releases every registered runtime, returning the first error
func (d *Driver) Close(ctx context.Context) error {
	var first error
	for _, m := range d.runtimes {
		if err := m.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
