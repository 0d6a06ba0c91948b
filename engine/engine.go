package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	sharedmod "github.com/wippyai/sharedmod"
)

// Module is a loaded guest, ready to instantiate.
type Module interface {
	// Instantiate links the guest against host and runs no guest code.
	// Unknown imports and signature mismatches fail here.
	Instantiate(ctx context.Context, host *HostModule) (Instance, error)
}

// Instance is a running guest.
type Instance interface {
	// Memory returns the guest's linear memory.
	Memory() sharedmod.Memory

	// Invoke calls a named export. A missing export or a fault inside the
	// call (including a host function error) is returned as an error.
	Invoke(ctx context.Context, export string, args ...uint64) error

	Close(ctx context.Context) error
}

// HostCall implements one host function. Arguments arrive on stack in
// declaration order; results are written back to the front of stack.
// A non-nil error aborts the in-flight guest call.
type HostCall func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error

// HostFunc declares one host function with its core-wasm signature.
type HostFunc struct {
	Field   string
	Params  []api.ValueType
	Results []api.ValueType
	Call    HostCall
}

// HostModule is the closed set of functions a gateway exposes to a guest
// under one import namespace.
type HostModule struct {
	Name  string
	Funcs []HostFunc
}

// Lookup returns the function exported under field, or nil
func (m *HostModule) Lookup(field string) *HostFunc {
	for i := range m.Funcs {
		if m.Funcs[i].Field == field {
			return &m.Funcs[i]
		}
	}
	return nil
}
