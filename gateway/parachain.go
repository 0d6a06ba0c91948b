package gateway

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	sharedmod "github.com/wippyai/sharedmod"
	"github.com/wippyai/sharedmod/engine"
	"github.com/wippyai/sharedmod/memio"
)

// Namespace is the import namespace both gateways export under.
const Namespace = "env"

// Dispatcher resolves a shared-module handle and forwards a time-sliced
// call. Implemented by the driver.
type Dispatcher interface {
	Dispatch(ctx context.Context, handle, timeSlice uint32, blob []byte) error
}

// Parachain builds the host module for a parachain validation guest:
//
//	call_shared_module(handle: u32, time_slice: u32, blob_ptr: u32, blob_len: u32)
//
// The blob is copied out of guest memory before the dispatch, so the target
// runtime owns its input. Any dispatch failure aborts the in-flight call.
func Parachain(d Dispatcher) *engine.HostModule {
	i32 := api.ValueTypeI32
	return &engine.HostModule{
		Name: Namespace,
		Funcs: []engine.HostFunc{
			{
				Field:  "call_shared_module",
				Params: []api.ValueType{i32, i32, i32, i32},
				Call: func(ctx context.Context, mem sharedmod.Memory, stack []uint64) error {
					handle := uint32(stack[0])
					timeSlice := uint32(stack[1])
					blobPtr := uint32(stack[2])
					blobLen := uint32(stack[3])

					blob, err := memio.NewMarshaller(mem).Read(blobPtr, blobLen)
					if err != nil {
						return err
					}
					return d.Dispatch(ctx, handle, timeSlice, blob)
				},
			},
		},
	}
}
