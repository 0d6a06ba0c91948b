package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/sharedmod/codec"
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/errors"
	"github.com/wippyai/sharedmod/gateway"
	"github.com/wippyai/sharedmod/memio"
)

// EntryPoint is the export every shared module guest must provide.
const EntryPoint = "handle"

// SharedModule is one registered shared module runtime.
type SharedModule struct {
	name    string
	module  engine.Module
	logger  *zap.Logger
	storage *Storage
	acc     *Accumulator

	// Instantiated on first Invoke, cached for the runtime's lifetime.
	inst    engine.Instance
	scratch *memio.Scratch
}

// Option configures a SharedModule
type Option func(*SharedModule)

// WithName sets a name used in logs
func WithName(name string) Option {
	return func(m *SharedModule) { m.name = name }
}

// WithLogger sets the runtime's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *SharedModule) { m.logger = l }
}

// WithInbound seeds the inbound accumulator with one blob per sender
func WithInbound(inbound map[uint32][]byte) Option {
	return func(m *SharedModule) {
		for sender, blob := range inbound {
			m.acc.PutInbound(sender, blob)
		}
	}
}

// New creates a runtime for a loaded guest module with empty storage and
// accumulator
func New(mod engine.Module, opts ...Option) *SharedModule {
	m := &SharedModule{
		module:  mod,
		logger:  zap.NewNop(),
		storage: NewStorage(),
		acc:     NewAccumulator(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Invoke runs one time-sliced call into the guest's handle entry point,
// with the scratch buffer seeded from blob.
//
// The first Invoke instantiates the guest against a shared-module gateway
// bound to this runtime's storage and accumulator; later calls reuse the
// cached instance. The time slice is opaque and passed through unchanged.
func (m *SharedModule) Invoke(ctx context.Context, timeSlice uint32, blob []byte) error {
	if err := m.ensureInstance(ctx); err != nil {
		return err
	}

	m.scratch.Set(blob)
	m.logger.Debug("invoke",
		zap.String("runtime", m.name),
		zap.Uint32("time_slice", timeSlice),
		zap.Int("blob_len", len(blob)))

	if err := m.inst.Invoke(ctx, EntryPoint, uint64(timeSlice)); err != nil {
		return errors.Wrap(errors.PhaseInvoke, errors.KindTrap, err, m.name)
	}
	return nil
}

func (m *SharedModule) ensureInstance(ctx context.Context) error {
	if m.inst != nil {
		return nil
	}

	m.scratch = &memio.Scratch{}
	inst, err := m.module.Instantiate(ctx, gateway.Shared(&gateway.SharedEnv{
		Scratch: m.scratch,
		Storage: m.storage,
		Mailbox: m.acc,
	}))
	if err != nil {
		return err
	}
	m.inst = inst
	return nil
}

// Name returns the runtime's log name
func (m *SharedModule) Name() string {
	return m.name
}

// Storage returns the runtime's persistent store
func (m *SharedModule) Storage() *Storage {
	return m.storage
}

// Outbound returns a snapshot of the outbound accumulator slots
func (m *SharedModule) Outbound() map[uint32][]byte {
	return m.acc.Outbound()
}

// TakeOutbound drains the outbound accumulator slots
func (m *SharedModule) TakeOutbound() map[uint32][]byte {
	return m.acc.TakeOutbound()
}

// Inbound returns the inbound accumulator slots in ascending sender order
func (m *SharedModule) Inbound() []codec.InboundGroup {
	return m.acc.InboundGroups()
}

// DeliverInbound places a relayed blob into the inbound slot for sender,
// reporting whether an undelivered blob was overwritten
func (m *SharedModule) DeliverInbound(sender uint32, blob []byte) bool {
	return m.acc.PutInbound(sender, blob)
}

// Close releases the cached guest instance, if any
func (m *SharedModule) Close(ctx context.Context) error {
	if m.inst == nil {
		return nil
	}
	err := m.inst.Close(ctx)
	m.inst = nil
	return err
}
